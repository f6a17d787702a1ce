// Package corpus enumerates the items a knowledge base is built from:
// library source modules, tutorial scripts and notebooks, and exported
// repository issues.
//
// Enumeration is deterministic. File contents are read and fingerprinted
// concurrently, then the combined item list is sorted by path so two
// scans of an unchanged corpus yield the same sequence. Item IDs derive
// from corpus-relative paths and fingerprints from contents, which is
// what lets the pipeline detect changed items between runs.
package corpus
