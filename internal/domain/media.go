package domain

// MediaState is the pair of local toggles a participant publishes to its room.
// Only the owner's copy is authoritative.
type MediaState struct {
	Muted     bool `json:"isMuted"`
	CameraOff bool `json:"isCameraOff"`
}
