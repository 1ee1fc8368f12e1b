// Package clean removes build outputs: packed archives from the category
// folders and, when forced, the releases tree.
package clean
