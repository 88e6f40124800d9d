package model

// AnswerMsg carries the outcome of one answering-service request back into the event loop
type AnswerMsg struct {
	Turn     int
	Response *AnswerResponse
	Err      error
}
