// Package keystore implements persistence for the release signing keypair.
//
// The Store either generates ephemeral key material in memory or persists a
// keypair once under the project-wide keys folder and reuses it on later
// runs. Reading back corrupt material is fatal by design: a quietly rotated
// key would break trust in every previously released archive.
package keystore
