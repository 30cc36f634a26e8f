package model

// RequestStatus represents the status of a download request
type RequestStatus string

const (
	// RequestStatusPending means the request was accepted but no work started
	RequestStatusPending RequestStatus = "Pending"

	// RequestStatusDownloading means the provider adapter is running
	RequestStatusDownloading RequestStatus = "Downloading"

	// RequestStatusSending means the file is being uploaded to the chat
	RequestStatusSending RequestStatus = "Sending"

	// RequestStatusCompleted means the file was delivered
	RequestStatusCompleted RequestStatus = "Completed"

	// RequestStatusError means the request failed with an error
	RequestStatusError RequestStatus = "Error"
)

// String returns the string representation of RequestStatus
func (rs RequestStatus) String() string {
	return string(rs)
}

// IsActive returns true if the request is in an active state
func (rs RequestStatus) IsActive() bool {
	return rs == RequestStatusDownloading || rs == RequestStatusSending
}

// IsFinished returns true if the request is in a finished state (completed or error)
func (rs RequestStatus) IsFinished() bool {
	return rs == RequestStatusCompleted || rs == RequestStatusError
}
