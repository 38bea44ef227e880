package models

// MClientCommand is a message sent by a websocket client.
// "refresh" computes a new snapshot, "latest" replays the last one.
type MClientCommand struct {
	Command string `json:"command"`
}

// MUpdatePairRequest is the body of the pair update endpoints.
type MUpdatePairRequest struct {
	Stock1 string `json:"stock1"`
	Stock2 string `json:"stock2"`
}
