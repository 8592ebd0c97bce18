// Package resolver decides whether a classified reference points at
// something that exists.
//
// Local resolves internal paths against the filesystem and fragment
// anchors against the document text. External probes http(s) URLs with a
// HEAD request. Both return a model.Outcome; neither returns errors for
// broken links, since a broken link is a result rather than a failure.
package resolver
