// Package signing defines the Packer and Signer capabilities consumed by
// the release pipeline and provides the default detached ed25519 signer.
//
// The archive binary format itself is out of scope: the pipeline treats
// packing as an upstream step and only contracts its behavior here.
package signing
