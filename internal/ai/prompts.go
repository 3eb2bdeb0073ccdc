package ai

import "github.com/inkpad/inkpad/internal/errs"

// Kind selects the augmentation applied to note content.
type Kind string

const (
	KindImprove   Kind = "improve"
	KindContinue  Kind = "continue"
	KindSummarize Kind = "summarize"
	KindExpand    Kind = "expand"
)

// systemPrompt frames every request. The model is told to answer in
// markdown because the suggestion replaces the editor content wholesale.
const systemPrompt = "You are a helpful writing assistant that helps improve markdown content. Always respond with well-formatted markdown. Be concise but helpful."

var kindInstructions = map[Kind]string{
	KindImprove:   "Please improve the following markdown content by enhancing clarity, structure, and readability. Keep the same general meaning but make it more engaging and well-formatted:",
	KindContinue:  "Please continue writing the following markdown content in a natural and coherent way. Maintain the same style and tone:",
	KindSummarize: "Please provide a concise summary of the following markdown content in bullet points:",
	KindExpand:    "Please expand on the following markdown content by adding more details, examples, and explanations while maintaining the original structure:",
}

// ParseKind validates a client-supplied kind. An empty string defaults to
// improve.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindImprove, nil
	}
	kind := Kind(s)
	if _, ok := kindInstructions[kind]; !ok {
		return "", errs.New(errs.InvalidArgument, "unknown suggestion type: "+s)
	}
	return kind, nil
}

// userPrompt builds the instruction sent as the user message.
func userPrompt(kind Kind, content string) string {
	return kindInstructions[kind] + "\n\n" + content
}
