// Package hclutil holds small helpers shared by the HCL-facing packages:
// block lookup and type keyword parsing.
package hclutil
