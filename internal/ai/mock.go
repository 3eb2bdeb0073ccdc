package ai

import (
	"context"
	"strings"

	"github.com/inkpad/inkpad/internal/errs"
)

// Mock is an offline Suggester for development and tests. It applies the
// same validation as the real gateway and returns deterministic content.
type Mock struct{}

func (Mock) Suggest(ctx context.Context, content string, kind Kind) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errs.New(errs.InvalidArgument, "content is required")
	}
	if _, ok := kindInstructions[kind]; !ok {
		return "", errs.New(errs.InvalidArgument, "unknown suggestion type: "+string(kind))
	}

	switch kind {
	case KindContinue:
		return content + "\n\nAnd so the story continues, one mock sentence at a time.", nil
	case KindSummarize:
		return "- Mock summary point one\n- Mock summary point two", nil
	case KindExpand:
		return content + "\n\nHere is some additional mock detail, with an example for good measure.", nil
	default:
		return "# Improved\n\n" + content, nil
	}
}
