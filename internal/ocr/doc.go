// Package ocr produces the OCR fragments the digitizer consumes.
//
// It wraps the Tesseract OCR engine (via gosseract/v2) to read word boxes
// from a diagram image, groups the words into line fragments, and tags every
// fragment with the detection region it belongs to.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Line Grouping
//
// Tesseract returns the page text line by line and, separately, the list of
// word boxes. GroupLines walks both in order, consuming words until their
// concatenation (spaces removed) is as long as the current line. This assumes
// the word order matches the reading order of the text; when it does not, the
// words of neighbouring lines get swapped and line boxes degrade silently.
//
// # Association
//
// Associate gives each fragment the class of the first region that contains
// its box center, checking legend boxes before the other labels. Fragments
// outside every region are tagged "none".
package ocr
