// Package vision sends clipped images to an OpenAI-compatible chat
// completions endpoint and returns the model's transcription.
//
// The request carries a single user message with a text prompt and the image
// as a base64 PNG data URL at low detail. Only the first choice's message
// content is returned.
package vision
