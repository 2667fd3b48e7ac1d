package summary

import (
	"strings"
	"text/template"
)

// maxPromptCommits bounds how many commit messages are quoted in the prompt
const maxPromptCommits = 15

const noReadme = "No README file found."

var promptTemplate = template.Must(template.New("summary").Parse(`Analyze the following GitHub project and generate a concise and professional project description in {{.Language}}.

Project Title: {{.Title}}
User's Description: {{.Description}}
Project Type: {{if .Team}}Team Project{{else}}Personal Project{{end}}
My Role: {{if .Team}}I was one of {{.Contributors}} contributors.{{else}}I was the sole developer.{{end}}
My Commits ({{len .Commits}}):
{{range .Quoted}}- {{.}}
{{end}}
README.md:
{{.Readme}}

Based on this information, please generate a new project description. The description should be:
- Written in {{.Language}}.
- 2-4 sentences long.
- Professional and suitable for a portfolio.
- Highlight key features and my contributions.
- Start with a clear opening sentence that introduces the project.
- Do not include any introductory text like "Here is the generated description:". Just provide the description itself.
`))

type promptData struct {
	Language     string
	Title        string
	Description  string
	Team         bool
	Contributors int
	Commits      []string
	Readme       string
}

// Quoted returns the first commit messages, one line each
func (d promptData) Quoted() []string {
	n := len(d.Commits)
	if n > maxPromptCommits {
		n = maxPromptCommits
	}
	quoted := make([]string, 0, n)
	for _, msg := range d.Commits[:n] {
		quoted = append(quoted, strings.ReplaceAll(strings.TrimSpace(msg), "\n", " "))
	}
	return quoted
}

func buildPrompt(data promptData) (string, error) {
	if data.Readme == "" {
		data.Readme = noReadme
	}
	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
