package llm

import "strings"

// ResumeTemplate is the YAML shape the reformatter is asked to fill.
const ResumeTemplate = `---
name: ''
phoneNumbers:
- ''
websites:
- ''
emails:
- ''
dateOfBirth: ''
addresses:
- street: ''
  city: ''
  state: ''
  zip: ''
  country: ''
summary: ''
education:
- school: ''
  degree: ''
  fieldOfStudy: ''
  startDate: ''
  endDate: ''
workExperience:
- company: ''
  position: ''
  startDate: ''
  endDate: ''
skills:
- name: ''
certifications:
- name: ''
`

const systemPreamble = "You are a chatbot having a conversation with a human. " +
	"Your task is to reformat the given input text into the specified template."

// RenderPrompt lays out preamble, template, prior turns and the new input.
func RenderPrompt(template string, history []Turn, input string) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nFormat the provided resume to this YAML template:\n")
	b.WriteString(strings.TrimRight(template, "\n"))
	b.WriteString("\n\n")
	for _, t := range history {
		b.WriteString("Human: ")
		b.WriteString(t.Human)
		b.WriteString("\nAI: ")
		b.WriteString(t.AI)
		b.WriteString("\n")
	}
	b.WriteString("Human: ")
	b.WriteString(input)
	b.WriteString("\nAI:")
	return b.String()
}
