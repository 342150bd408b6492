// Package latex compiles the main resume file with pdflatex, cleans up the
// auxiliary files it leaves behind and prepares the resulting PDF for display.
//
// pdflatex runs twice on every compile so cross-references settle. Success is
// decided by whether the PDF exists afterwards, not by exit status: pdflatex
// routinely exits nonzero on warnings while still writing a usable document.
package latex
