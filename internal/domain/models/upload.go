package models

type UploadState string

const (
	UploadPending   UploadState = "pending"
	UploadUploading UploadState = "uploading"
	UploadVerifying UploadState = "verifying"
	UploadRetrying  UploadState = "retrying"
	UploadDone      UploadState = "done"
	UploadGivenUp   UploadState = "given_up"
)

// UploadAttempt is the final state of one file's upload. It lives only for the
// duration of the run.
type UploadAttempt struct {
	Object   string
	Attempts int
	State    UploadState
	Bytes    int64
	Err      error
}

func (a UploadAttempt) Verified() bool {
	return a.State == UploadDone
}
