package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfryer1193/alttext/media/domain"
	"github.com/rs/zerolog/log"
)

// AltTextUpdater backfills missing alt text across the media library.
// It keeps no state between passes; concurrent passes are not coordinated and the last write
// to a field wins.
type AltTextUpdater struct {
	store      domain.MediaStore
	authorizer domain.Authorizer
}

func NewAltTextUpdater(store domain.MediaStore, authorizer domain.Authorizer) *AltTextUpdater {
	return &AltTextUpdater{
		store:      store,
		authorizer: authorizer,
	}
}

// RunUpdatePass authorizes the caller, then visits every image attachment once:
//   - an empty title is derived from the filename and saved
//   - a title or alt text containing a hyphen is normalized and saved
//   - an empty alt text is set from the title
//
// The caller must hold manage_options. Otherwise an error wrapping domain.ErrUnauthorized is
// returned and the store is never touched. Store errors on a single attachment are logged and
// counted in Summary.Failed; the pass continues with the next one.
func (u *AltTextUpdater) RunUpdatePass(ctx context.Context, token string) (*domain.Summary, error) {
	principal, err := u.authorizer.Authenticate(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate caller: %w", err)
	}
	if !principal.Can(domain.CapManageOptions) {
		return nil, fmt.Errorf("user %q lacks %s: %w", principal.Name, domain.CapManageOptions, domain.ErrUnauthorized)
	}

	ids, err := u.store.ListImageAttachmentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list image attachments: %w", err)
	}

	summary := &domain.Summary{Total: len(ids)}
	for _, id := range ids {
		if err := u.updateAttachment(ctx, id, summary); err != nil {
			log.Error().Err(err).Int64("attachmentID", id).Msg("Failed to update attachment")
			summary.Failed++
		}
	}

	log.Info().
		Str("user", principal.Name).
		Int("total", summary.Total).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Alt text update pass complete")

	return summary, nil
}

func (u *AltTextUpdater) updateAttachment(ctx context.Context, id int64, summary *domain.Summary) error {
	title, err := u.store.GetTitle(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}

	altText, err := u.store.GetAltText(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read alt text: %w", err)
	}

	sizes, err := u.store.GetSizeVariants(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read size variants: %w", err)
	}
	summary.TotalSizesProcessed += len(sizes)

	if title == "" {
		title, err = u.titleFromFile(ctx, id)
		if err != nil {
			return err
		}
	}

	repaired := false

	if title != "" && strings.Contains(title, "-") {
		title = NormalizeDisplayText(title)
		if err := u.store.SetTitle(ctx, id, title); err != nil {
			return fmt.Errorf("failed to save normalized title: %w", err)
		}
		summary.Updated++
		repaired = true
	}

	if altText != "" && strings.Contains(altText, "-") {
		altText = NormalizeDisplayText(altText)
		if err := u.store.SetAltText(ctx, id, altText); err != nil {
			return fmt.Errorf("failed to save normalized alt text: %w", err)
		}
		summary.Updated++
		repaired = true
	}

	if repaired {
		summary.MetadataIssues++
	}

	if altText == "" && title != "" {
		if derived := NormalizeDisplayText(SanitizeTextField(title)); derived != "" {
			if err := u.store.SetAltText(ctx, id, derived); err != nil {
				return fmt.Errorf("failed to save alt text: %w", err)
			}
			log.Debug().Int64("attachmentID", id).Str("altText", derived).Msg("Set alt text from title")
			summary.Updated++
			return nil
		}
	}

	summary.Skipped++
	return nil
}

// titleFromFile derives a title from the attachment's filename and saves it when non-empty.
func (u *AltTextUpdater) titleFromFile(ctx context.Context, id int64) (string, error) {
	filePath, err := u.store.GetFilePath(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read file path: %w", err)
	}

	title := GenerateTitleFromFilename(filePath)
	if title == "" {
		log.Debug().Int64("attachmentID", id).Str("filePath", filePath).Msg("No usable title in filename")
		return "", nil
	}

	if err := u.store.SetTitle(ctx, id, title); err != nil {
		return "", fmt.Errorf("failed to save generated title: %w", err)
	}
	return title, nil
}
