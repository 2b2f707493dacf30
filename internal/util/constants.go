package util

const (
	StorageSupabase = "supabase"
	StorageLocal    = "local"
	StorageMinio    = "minio"
	StorageOSS      = "oss"
)

const (
	MimeVideo       = "video/"
	MimeOctetStream = "application/octet-stream"
)

// Messages shown to users when a backend call fails. Details only go to the log.
const (
	MsgLoadFailed     = "Failed to load participants. Please refresh the page."
	MsgRegisterFailed = "Failed to add participant. Please try again."
	MsgSubmitFailed   = "Failed to submit task. Please try again."
)
