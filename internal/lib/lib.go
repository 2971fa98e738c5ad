// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains shared utilities, token signing, the image host client,
// background job processing (Redis/Asynq) and email delivery (Resend).
package lib
