package conversation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Extractor turns a pattern match over text into fact values. Returning no
// values means the rule did not apply and the next rule is tried.
type Extractor func(text string, re *regexp.Regexp) []string

// Rule is one (kind, pattern, extractor) step of fact extraction.
type Rule struct {
	Kind    FactKind
	Pattern *regexp.Regexp
	Extract Extractor
}

// Apply fills empty slots of sheet from text using rules in order and
// returns the kinds that were filled.
func Apply(rules []Rule, sheet *FactSheet, text string) []FactKind {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var filled []FactKind
	for _, r := range rules {
		if sheet.Has(r.Kind) {
			continue
		}
		if sheet.Fill(r.Kind, r.Extract(text, r.Pattern)...) {
			filled = append(filled, r.Kind)
		}
	}
	return filled
}

// japaneseParticles split a leading clause from the noun that follows it.
const japaneseParticles = "はのでにをがも、"

// nameStopWords are capitalized words that follow "I am" without being a name.
var nameStopWords = map[string]bool{
	"A": true, "An": true, "The": true, "And": true, "But": true, "So": true,
	"From": true, "In": true, "At": true, "Also": true, "Just": true, "Not": true,
	"Currently": true, "Working": true, "Studying": true, "Looking": true,
	"Interested": true, "Excited": true, "Happy": true, "Glad": true, "Sure": true,
	"Very": true, "Really": true, "Still": true, "Now": true, "Here": true,
	"Majoring": true, "Applying": true, "Graduating": true, "Passionate": true,
	"Familiar": true, "Experienced": true, "Proficient": true, "Responsible": true,
}

// leadingStopWords are dropped from the front of multi-word organization names.
var leadingStopWords = map[string]bool{
	"I": true, "At": true, "From": true, "In": true, "The": true, "And": true, "My": true,
}

// FirstGroup returns capture group 1 passed through clean.
func FirstGroup(clean func(string) string) Extractor {
	return func(text string, re *regexp.Regexp) []string {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			return nil
		}
		v := strings.TrimSpace(m[1])
		if clean != nil {
			v = clean(v)
		}
		if v == "" {
			return nil
		}
		return []string{v}
	}
}

// SplitList splits capture group 1 into list items.
func SplitList(maxItems int) Extractor {
	return func(text string, re *regexp.Regexp) []string {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			return nil
		}
		return splitItems(m[1], maxItems)
	}
}

// Keywords tokenizes text with re and keeps tokens found in the vocabulary,
// in first-seen order without duplicates.
func Keywords(vocabulary map[string]string, caseSensitive map[string]bool) Extractor {
	return func(text string, re *regexp.Regexp) []string {
		var out []string
		seen := make(map[string]bool)
		for _, tok := range re.FindAllString(text, -1) {
			tok = strings.TrimRight(tok, ".-")
			canonical, ok := vocabulary[strings.ToLower(tok)]
			if !ok || (caseSensitive[canonical] && tok != canonical) || seen[canonical] {
				continue
			}
			seen[canonical] = true
			out = append(out, canonical)
		}
		return out
	}
}

var listSeparator = regexp.MustCompile(`\s*(?:,|、|/|・|\band\b|\bor\b|及び|と)\s*`)

func splitItems(s string, maxItems int) []string {
	var out []string
	for _, item := range listSeparator.Split(s, -1) {
		item = strings.Trim(strings.TrimSpace(item), ".!?。")
		if item == "" || len([]rune(item)) > 40 {
			continue
		}
		out = append(out, item)
		if maxItems > 0 && len(out) == maxItems {
			break
		}
	}
	return out
}

func cleanName(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 || nameStopWords[fields[0]] {
		return ""
	}
	if len(fields) > 1 && nameStopWords[fields[1]] {
		fields = fields[:1]
	}
	return strings.Join(fields, " ")
}

func cleanOrganization(v string) string {
	fields := strings.Fields(v)
	for len(fields) > 1 && leadingStopWords[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// afterParticle keeps the text after the last Japanese particle.
func afterParticle(v string) string {
	if i := strings.LastIndexAny(v, japaneseParticles); i >= 0 {
		_, size := utf8.DecodeRuneInString(v[i:])
		v = v[i+size:]
	}
	return strings.TrimSpace(v)
}

func trimSentence(v string) string {
	return strings.TrimRight(strings.TrimSpace(v), ".,!?。、")
}

var skillVocabulary = map[string]string{
	"go": "Go", "golang": "Go", "python": "Python", "java": "Java",
	"javascript": "JavaScript", "typescript": "TypeScript", "ruby": "Ruby",
	"rust": "Rust", "c++": "C++", "c#": "C#", "php": "PHP", "swift": "Swift",
	"kotlin": "Kotlin", "scala": "Scala", "sql": "SQL", "react": "React",
	"vue": "Vue", "angular": "Angular", "node.js": "Node.js", "django": "Django",
	"rails": "Rails", "spring": "Spring", "aws": "AWS", "gcp": "GCP",
	"azure": "Azure", "docker": "Docker", "kubernetes": "Kubernetes",
	"terraform": "Terraform", "linux": "Linux", "git": "Git",
	"excel": "Excel", "figma": "Figma",
}

// "Go" is only a skill when capitalized.
var skillCaseSensitive = map[string]bool{"Go": true}

const yearCount = `(?:\d+|one|two|three|four|five|six|seven|eight|nine|ten|several|a few)`

// DefaultRules returns the built-in extraction rules for English and
// Japanese answers, ordered kind by kind with the most specific pattern first.
func DefaultRules() []Rule {
	return []Rule{
		{FactName, regexp.MustCompile(`(?i:my name is|my name's)\s+([A-Z][A-Za-z'-]+(?:\s+[A-Z][A-Za-z'-]+)?)`), FirstGroup(cleanName)},
		{FactName, regexp.MustCompile(`\b(?:I am|I'm|I’m|(?i:call me))\s+([A-Z][A-Za-z'-]+(?:\s+[A-Z][A-Za-z'-]+)?)`), FirstGroup(cleanName)},
		{FactName, regexp.MustCompile(`名前は\s*([^\s、。,.]+?)\s*(?:です|と申します|といいます)`), FirstGroup(nil)},
		{FactName, regexp.MustCompile(`([^\s、。,.]+?)\s*と申します`), FirstGroup(afterParticle)},

		{FactUniversity, regexp.MustCompile(`(University of(?:\s+[A-Z][\w&.'-]*)+)`), FirstGroup(trimSentence)},
		{FactUniversity, regexp.MustCompile(`((?:[A-Z][\w&.'-]*\s+)+University)\b`), FirstGroup(cleanOrganization)},
		{FactUniversity, regexp.MustCompile(`([^\s、。,.]+?大学(?:院)?)`), FirstGroup(afterParticle)},

		{FactCompany, regexp.MustCompile(`\b(?i:work(?:ed|ing)?|employed|intern(?:ed|ing)?|job)\s+(?i:at|for|with)\s+([A-Z][\w&.'-]*(?:\s+[A-Z][\w&.'-]*)*)`), FirstGroup(trimSentence)},
		{FactCompany, regexp.MustCompile(`\b(?i:joined)\s+([A-Z][\w&.'-]*(?:\s+[A-Z][\w&.'-]*)*)`), FirstGroup(trimSentence)},
		{FactCompany, regexp.MustCompile(`([^\s、。,.]+?)(?:で働いて|に勤めて|に勤務|で勤務|に就職)`), FirstGroup(afterParticle)},

		{FactExperience, regexp.MustCompile(`(?i)\b(` + yearCount + `\+?\s+years?\s+(?:of\s+)?(?:\w+\s+)?experience(?:\s+(?:in|with|as)\s+[^.,!?]+)?)`), FirstGroup(trimSentence)},
		{FactExperience, regexp.MustCompile(`(?i)\b((?:been\s+)?working\s+(?:as\s+[^.,!?]+?\s+)?for\s+` + yearCount + `\+?\s+(?:years?|months?))`), FirstGroup(trimSentence)},
		{FactExperience, regexp.MustCompile(`(\d+\s*(?:年|ヶ月|か月)(?:間)?[^、。\s]{0,10}?経験)`), FirstGroup(nil)},
		{FactExperience, regexp.MustCompile(`(?i)\bexperience (?:in|with|as)\s+([^.,!?]+)`), FirstGroup(trimSentence)},

		{FactSkills, regexp.MustCompile(`(?i)\b(?:my skills (?:include|are)|skilled in|proficient (?:in|with)|experienced (?:in|with)|familiar with|good at|i (?:mainly )?(?:use|know|work with))\s+([^.!?]+)`), SplitList(10)},
		{FactSkills, regexp.MustCompile(`[A-Za-z][A-Za-z0-9.+#-]*`), Keywords(skillVocabulary, skillCaseSensitive)},
		{FactSkills, regexp.MustCompile(`([^\s。]+?)(?:を使って|を使用して|が得意|ができます)`), func(text string, re *regexp.Regexp) []string {
			m := re.FindStringSubmatch(text)
			if len(m) < 2 {
				return nil
			}
			return splitItems(afterParticle(m[1]), 10)
		}},
	}
}
