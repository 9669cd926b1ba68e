// Package benchmarks holds codec benchmarks across JSON drivers.
//
//	go test -bench . -benchmem ./benchmarks
package benchmarks
