// Package demo contains the demo programs as loop controllers. Each
// reads its inputs, talks to the card and shows the outcome as a text
// frame on a display.
package demo
