// Package lexfst provides compact, immutable term dictionaries backed by
// minimal finite-state transducers.
//
// A Dictionary maps byte-string terms to uint64 values, for example term
// ordinals or postings offsets. Shared prefixes and suffixes are stored
// once, so large sorted vocabularies usually take a fraction of the space
// of a hash map while still supporting ordered and prefix queries.
//
// # Quick Start
//
//	b := lexfst.NewDictionaryBuilder()
//	for _, term := range sortedTerms {
//	    if err := b.AddString(term, offsets[term]); err != nil {
//	        return err
//	    }
//	}
//	dict, err := b.Finish()
//
// Unsorted input can use BuildFromMap; BuildOrdinals assigns each distinct
// term its rank and enables reverse lookup with TermForValue.
//
// # Queries
//
//	v, ok, _ := dict.Get([]byte("stop"))
//	e, ok, _ := dict.Ceil([]byte("sto"))      // smallest term >= "sto"
//	for term, v := range dict.Prefix([]byte("st")) {
//	    fmt.Println(string(term), v)
//	}
//	best, _, _ := dict.TopN([]byte("st"), 3) // three smallest values
//	res, _ := dict.GetBatch(ctx, terms)      // parallel point lookups
//
// # Persistence
//
// Dictionaries are stored as a small container: the "LXF1" magic, a
// version, the payload compression, term count, lengths and a CRC32-C
// followed by the serialized automaton. Any blobstore.Store can hold them:
//
//	store := blobstore.NewLocalStore("./dicts")
//	err := dict.Save(ctx, store, "terms.lxf")
//	dict, err = lexfst.Open(ctx, store, "terms.lxf", lexfst.WithIOLimit(64<<20))
//
// Use blobstore/s3 or blobstore/minio for object storage.
//
// # Observability
//
// WithLogger and WithMetricsCollector hook builds, lookups, saves and
// loads into slog and custom metrics backends.
//
// # Lower-level API
//
// Package fst exposes the transducer itself: the incremental Builder with
// its pruning and packing options, enumerators, and generic output
// algebras from package outputs.
package lexfst
