package magwi

import (
	"fmt"
	"io"
	"strings"
)

// markerKinds lists the marker operations of the declaration family in header
// order: the fifteen plain branches, the fifteen link branches, then the
// pre, post and symptr markers.
func markerKinds() (ks []Kind) {
	conds := []Condition{
		CondAL, CondEQ, CondNE, CondCS, CondCC, CondMI, CondPL, CondVS,
		CondVC, CondHI, CondLS, CondGE, CondLT, CondGT, CondLE,
	}
	for _, link := range []bool{false, true} {
		for _, c := range conds {
			ks = append(ks, BranchKind(c, link))
		}
	}
	return append(ks, KindPre, KindPost, KindSymptr)
}

// Header renders the include header that declares hooks inline from C, C++
// and assembler sources. The impl wrapper layer is load-bearing: it forces
// full expansion of the line, counter and filename macros before the impl2
// paste fuses them into one token, a single-level paste would fuse the macro
// names instead.
func Header() string {
	b := new(strings.Builder)

	b.WriteString(`#pragma once

#ifndef __INTELLISENSE__

    #if __GNUC__ < 11
        #error "magwi requires GCC >= 11.0"
    #endif

    #ifndef __mw_symbol_safe_filename
        #error "__mw_symbol_safe_filename must be defined"
    #endif

#endif

#ifndef __ASSEMBLER__

    #define __mw_hook_label_impl2(type, arg, file, line, counter) \
        __attribute__((used, __symver__("__mw_hook_" #type "$" #arg "$" #file "$" #line "$" #counter "@0")))

    #define __mw_hook_label_impl(type, arg, file, line, counter) \
        __mw_hook_label_impl2(type, arg, file, line, counter)

    #define __mw_hook_label(type, arg) \
        __mw_hook_label_impl(type, arg, __mw_symbol_safe_filename, __LINE__, __COUNTER__)

    #define __mw_section_impl2(type, arg, file, line, counter) \
        __attribute__((used, section(".__mw_hook_" #type "$" #arg "$" #file "$" #line "$" #counter)))

    #define __mw_section_impl(type, arg, file, line, counter) \
        __mw_section_impl2(type, arg, file, line, counter)

    #define __mw_section(type, arg) \
        __mw_section_impl(type, arg, __mw_symbol_safe_filename, __LINE__, __COUNTER__)

    #define mw_replace(address) __mw_section(replace, address)

    #define mw_loader_code \
        __attribute__((section(".mw_loader_text"), optimize("Os")))

    #ifdef __cplusplus
        #define __mw_extern extern "C"
    #else
        #define __mw_extern extern
    #endif

    __mw_extern char __mw_text_start;
    __mw_extern char __mw_text_end;

#else

    #define __mw_hook_label_impl2(type, arg, file, line, counter) .global __mw_hook_##type##$##arg##$##file##$##line##$##counter; __mw_hook_##type##$##arg##$##file##$##line##$##counter:

    #define __mw_hook_label_impl(type, arg, file, line, counter) \
        __mw_hook_label_impl2(type, arg, file, line, counter)

    #define __mw_hook_label(type, arg) \
        __mw_hook_label_impl(type, arg, __mw_symbol_safe_filename, __LINE__, __COUNTER__)

    #define __mw_section_impl2(type, arg, file, line, counter) \
        .pushsection .__mw_hook_##type##$##arg##$##file##$##line##$##counter

    #define __mw_section_impl(type, arg, file, line, counter) \
        __mw_section_impl2(type, arg, file, line, counter)

    #define __mw_section(type, arg) \
        __mw_section_impl(type, arg, __mw_symbol_safe_filename, __LINE__, __COUNTER__)

    #define mw_replace(address) __mw_section(replace, address)
    #define mw_replace_end .popsection

    #define mw_loader_section .mw_loader_text

#endif
`)

	link := false
	for _, k := range markerKinds() {
		if k.Class == ClassBranch && k.Link != link || k.Class == ClassPre || k.Class == ClassSymptr {
			link = k.Link
			b.WriteByte('\n')
		}
		fmt.Fprintf(b, "\n#define mw_%s(address) __mw_hook_label(%s, address)", k, k)
	}
	b.WriteByte('\n')
	return b.String()
}

// WriteHeader emits the include header to a writer.
func WriteHeader(w io.Writer) (err error) {
	_, err = io.WriteString(w, Header())
	return
}
