// Package auth obtains signed credentials for restricted channel classes.
//
// Channels whose names start with "private-" or "presence-" require a signed
// authorization string before the server accepts a subscription. The client
// does not hold the signing secret; an Authorizer exchanges the channel name
// and the server-assigned socket ID for a signature, typically by calling the
// application's own backend.
//
// HTTPAuthorizer implements the common case: a form-encoded POST to an
// authorization endpoint that responds with a JSON body carrying "auth" and,
// for presence channels, "channel_data".
package auth
