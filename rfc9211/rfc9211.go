// Package rfc9211 models the parts of the Cache-Status field (RFC 9211)
// that the accelerator reports in its diagnostic log.
//
// Paragraphs marked with § are quoted from the RFC.
package rfc9211
