package notes

import (
	"context"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

// WelcomeTitle is the title of the note seeded into every empty account.
const WelcomeTitle = "Welcome to Your AI-Powered Notes"

// welcomeContent is the body of the seeded welcome note.
const welcomeContent = `# Welcome to Your AI-Powered Notes

This is your personal space for capturing ideas, plans, and anything else worth remembering.

## Getting started

- **Write in Markdown.** Headings, lists, links, and code blocks all work.
- **Autosave has your back.** Stop typing and your changes are saved a few seconds later.
- **Share with a link.** Every note has a public URL built from its title.

## Try the AI assistant

Select the assistant and ask it to:

- *Improve* your draft's clarity and flow
- *Continue* writing from where you stopped
- *Summarize* a long note into key points
- *Expand* a sketch into full detail

Happy writing!
`

// EnsureSeeded guarantees the user has their welcome note. Safe to call on
// every list request: concurrent calls for one user collapse via
// singleflight, and the deterministic note id makes the insert idempotent
// across processes.
func (s *Service) EnsureSeeded(ctx context.Context, userID string) error {
	if userID == "" {
		return errs.New(errs.InvalidArgument, "user id is required")
	}

	_, err, _ := s.seed.Do(userID, func() (any, error) {
		now := s.now().UTC().Unix()
		row := &db.Note{
			ID:        "welcome-" + userID,
			UserID:    userID,
			Title:     WelcomeTitle,
			Content:   welcomeContent,
			Slug:      "welcome-" + userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.db.InsertNoteIgnoringConflict(ctx, row); err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to seed welcome note", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	obs.From(ctx).Debug("welcome_seed_checked", "pkg", "notes", "user_id", userID)
	return nil
}
