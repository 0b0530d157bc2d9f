package dossier

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

// Dossier is the sectioned company research text
type Dossier struct {
	Raw      string
	Sections map[string]string
}

var urlRe = regexp.MustCompile(`https?://[^\s<>()\[\]"'` + "`" + `]+`)

// ParseDossier splits research text into its known sections. Headers may
// carry markdown decoration ("## ", "**") and content on the same line.
func ParseDossier(text string) *Dossier {
	d := &Dossier{Raw: text, Sections: map[string]string{}}

	// Longest first so "ORGANIZATION DETAILS" wins over "ORGANIZATION"
	headers := common.DossierSectionOrder()
	sort.SliceStable(headers, func(i, j int) bool { return len(headers[i]) > len(headers[j]) })

	currentSection := ""
	var currentBuffer strings.Builder

	saveSection := func() {
		if currentSection == "" {
			return
		}
		bufText := strings.TrimSpace(currentBuffer.String())
		if prev, ok := d.Sections[currentSection]; ok && prev != "" {
			bufText = strings.TrimSpace(prev + "\n" + bufText)
		}
		d.Sections[currentSection] = bufText
	}

	for _, line := range strings.Split(text, "\n") {
		header, remainder, ok := matchHeader(line, headers)
		if ok {
			saveSection()
			currentSection = header
			currentBuffer.Reset()
			if remainder != "" {
				currentBuffer.WriteString(remainder)
				currentBuffer.WriteString("\n")
			}
			continue
		}
		if currentSection != "" {
			currentBuffer.WriteString(line)
			currentBuffer.WriteString("\n")
		}
	}
	saveSection()

	return d
}

func matchHeader(line string, headers []string) (header, remainder string, ok bool) {
	trimmed := strings.TrimLeft(strings.TrimSpace(line), "#*> ")
	for _, h := range headers {
		if len(trimmed) < len(h) || !strings.EqualFold(trimmed[:len(h)], h) {
			continue
		}
		rest := strings.TrimLeft(trimmed[len(h):], "* ")
		switch {
		case rest == "":
			return h, "", true
		case strings.HasPrefix(rest, ":"):
			return h, strings.TrimSpace(strings.TrimLeft(rest[1:], "* ")), true
		}
	}
	return "", "", false
}

// Section returns a section's body, or "" when absent
func (d *Dossier) Section(name string) string {
	return d.Sections[name]
}

// CompanyName is the first line of the ORGANIZATION section
func (d *Dossier) CompanyName() string {
	org := d.Sections[common.SecOrganization]
	for _, line := range strings.Split(org, "\n") {
		name := strings.Trim(strings.TrimSpace(line), "*-_`#. ")
		if name != "" {
			return name
		}
	}
	return "Company"
}

// URLs lists every distinct link in the dossier, in order of appearance
func (d *Dossier) URLs() []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range urlRe.FindAllString(d.Raw, -1) {
		u = strings.TrimRight(u, ".,;:!?*")
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// String renders the sections in standard order
func (d *Dossier) String() string {
	var sb strings.Builder
	for _, name := range common.DossierSectionOrder() {
		body, ok := d.Sections[name]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s:\n%s\n\n", name, body))
	}
	return strings.TrimSpace(sb.String()) + "\n"
}
