// Package wbp estimates, for every character of a normalized corpus, the
// probability that a new word starts there.
//
// # Quick Start
//
//	est, err := wbp.New(wbp.WithMaxN(4), wbp.WithWorkers(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer est.Close()
//
//	report, err := est.Run(ctx, wbp.Paths{
//	    Raw:        "raw.txt",
//	    Segmented:  "segmented.txt",
//	    Normalized: "normalized.txt",
//	    NGrams:     "ngrams.tsv",
//	    Output:     "boundary.pb",
//	})
//
// # Pipeline
//
// A contiguous random sample of raw and word-segmented sentence pairs is
// aligned to derive per-character boundary labels. Each position is
// described by n-gram association scores between the text on its left and
// on its right. A probabilistic classifier is trained on the labeled sample
// and then scores every position of the normalized corpus in parallel. The
// resulting sequence, with 1.0 at position 0, is written with package store.
//
// # Thread Safety
//
// An Estimator runs one pipeline at a time. Scoring fans out over
// WithWorkers goroutines internally.
package wbp
