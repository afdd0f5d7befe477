/*
Package magwi declares machine-code hook points at build time for a
downstream patch tool to resolve against a prebuilt target binary.

# License

Source codes are under Apache License Version 2.0.

# Underwater

 1. Every hook declaration packs its descriptor, kind, target argument,
    origin file token, line and a per-unit counter, into one linker-visible
    token: a versioned symbol for markers, a named section for replacement
    payloads.
 2. The 5-tuple makes tokens globally unique across a link with no
    coordination between translation units, so units compile in parallel
    and the downstream tool may consume discovered tokens in any order.
 3. Tokens survive optimization and stripping because they ride on used
    attributes and public labels the linker can not discard.

# Notes

 1. Arguments must never contain the '$' delimiter, Unit rejects such
    declarations but the generated include header can not.
 2. Token collisions are deliberately not detected here, they surface as
    duplicate symbol or section errors at link time.
 3. The guard requires GCC >= 11 for the attribute forms in use, older
    toolchains fail the build before any hook is processed.

# Generator tool

mwgen renders the include header for inline declarations, lowers hks
manifests into assembler or C declaration fragments, and inspects the
tokens materialized inside built objects. It can be installed by:

	go install github.com/mwtools/magwi/mwgen@latest

For more details see the cli help:

	mwgen -h

# Samples

A gen run is driven by a yaml config:

	cc: arm-none-eabi-gcc
	out: build/hooks
	units:
	  - source: src/combat.c
	    context: c
	    hooks: hooks/combat.hks

See hks/testdata and tests.
*/
package magwi
