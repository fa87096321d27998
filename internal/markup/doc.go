// Package markup reads the line-oriented chord sheet format.
//
// A song file is a sequence of lines of three kinds:
//
//	{title: Amazing Grace}     directive (metadata or section marker)
//	[C]Amazing [F]grace &Gnade  content: chords, lyrics, translation
//	                            blank / stanza break
//
// Lines classifies raw text into Line values. LexLine splits a content
// line into chord, text and translation segments, and LexChord splits a
// chord into root and suffix parts. All three are lossless apart from the
// delimiters they consume, so callers can rebuild the source text.
package markup
