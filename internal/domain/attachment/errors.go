package attachment

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("attachment not found")
	ErrUnknownOwnerType = errors.New("unknown attachable type")
	ErrOwnerNotFound    = errors.New("attachable owner not found")
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrNoFiles          = errors.New("no files provided")
	ErrInvalidLink      = errors.New("link must be an absolute http(s) URL")
	ErrContentConflict  = errors.New("exactly one of file_url and external_url must be set")
	ErrUploadFailed     = errors.New("upload failed")
)

// PartialUploadError reports a batch that stopped part way. Created holds the
// attachments persisted before the failure; they are not rolled back.
type PartialUploadError struct {
	Created  []Attachment
	Filename string
	Err      error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("upload failed at %q after %d file(s): %v", e.Filename, len(e.Created), e.Err)
}

func (e *PartialUploadError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}

// CreatedIDs lists the ids of attachments kept from the batch.
func (e *PartialUploadError) CreatedIDs() []int64 {
	ids := make([]int64, len(e.Created))
	for i, a := range e.Created {
		ids[i] = a.ID
	}
	return ids
}
