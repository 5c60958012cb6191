// Package httputil holds retry support for requests made outside the
// acquisition path, such as an explicit catalog refresh. Acquisition stages
// make exactly one attempt.
//
// Transient failures (transport errors, 5xx and 429 responses) are wrapped in
// [RetryableError] by the client; [Retry] repeats only those, doubling the
// delay between attempts and stopping early when the context ends:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    _, err := source.Refresh(ctx)
//	    return err
//	})
//
// Permanent failures such as 404 are returned after the first attempt.
package httputil
