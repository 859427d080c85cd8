// Package aead unwraps the optional AES-256-GCM envelope a manifest may
// declare around the reconstructed plaintext, mirroring the AESGCM.decrypt
// call in original_source's reconstruct.py but built on the standard
// library's crypto/cipher.AEAD instead of the cryptography package.
package aead

import (
	"crypto/aes"
	"crypto/cipher"

	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
)

const (
	supportedAlgorithm = "aes-256-gcm"
	tagSize            = 16
)

// Open unwraps postRS (the RS decoder's output, already truncated to
// original_size_bytes) per the manifest's encryption block. separatedTag is the
// manifest's encryption.tag field decoded from hex, or nil when the field
// was absent — in that case the trailing tagSize bytes of postRS are taken
// as the tag instead, per the separated-tag-is-authoritative rule.
func Open(algorithm string, key, iv, separatedTag, postRS []byte) ([]byte, error) {
	if algorithm != supportedAlgorithm {
		return nil, nebulaerrors.New(nebulaerrors.UnsupportedCipher, "unsupported encryption algorithm %q", algorithm)
	}

	ciphertext := postRS
	tag := separatedTag
	if tag == nil {
		if len(postRS) < tagSize {
			return nil, nebulaerrors.New(nebulaerrors.ManifestInvalid,
				"no separated tag and post-RS data (%d bytes) shorter than tag size %d", len(postRS), tagSize)
		}
		split := len(postRS) - tagSize
		ciphertext = postRS[:split]
		tag = postRS[split:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nebulaerrors.Wrap(nebulaerrors.DecryptionFailed, err, "constructing AES cipher")
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, nebulaerrors.Wrap(nebulaerrors.DecryptionFailed, err, "constructing GCM")
	}

	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, nebulaerrors.Wrap(nebulaerrors.DecryptionFailed, err, "GCM authentication failed")
	}
	return plaintext, nil
}
