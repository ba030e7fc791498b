package models

const (
	fallbackSuccessMessage = "Playlist generated"
	fallbackFailureMessage = "Playlist generation failed"
)

// GenerationResult is the response envelope of the generate endpoint.
//
// Count is only present on success paths where the backend supplies it.
type GenerationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
}

// Failed builds a failure result carrying message, or the generic failure text when message is empty.
func Failed(message string) GenerationResult {
	if message == "" {
		message = fallbackFailureMessage
	}
	return GenerationResult{Success: false, Message: message}
}

// Succeeded builds a success result. A negative count is treated as absent.
func Succeeded(message string, count int) GenerationResult {
	r := GenerationResult{Success: true, Message: message}
	if count >= 0 {
		r.Count = &count
	}
	return r.Normalize()
}

// Normalize fills an empty Message and drops a negative Count.
func (r GenerationResult) Normalize() GenerationResult {
	if r.Message == "" {
		if r.Success {
			r.Message = fallbackSuccessMessage
		} else {
			r.Message = fallbackFailureMessage
		}
	}
	if r.Count != nil && *r.Count < 0 {
		r.Count = nil
	}
	return r
}

// TrackCount returns Count and whether the backend supplied it.
func (r GenerationResult) TrackCount() (int, bool) {
	if r.Count == nil {
		return 0, false
	}
	return *r.Count, true
}
