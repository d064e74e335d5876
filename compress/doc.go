// Package compress provides the entropy backends for the usc outer framer.
//
// A framed packet stream (DICT followed by DATA packets) is still byte
// redundant across packets: template literals repeat in raw rows, dictionary
// entries echo channel payloads. The outer entropy pass crushes that
// residue. Backends implement the Codec interface; cold mode additionally
// uses the dictionary-aware Zstd codec trained on a sample of the framed
// stream.
//
// The Zstd backend uses github.com/klauspost/compress/zstd with pooled
// encoders and decoders. A cgo variant backed by github.com/valyala/gozstd
// exists behind the nobuild tag for deployments that prefer the C library.
package compress
