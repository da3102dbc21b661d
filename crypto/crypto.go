// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package crypto collects the hash and signature primitives the VM's crypto
// opcodes and the simulated chain's address derivation need.
package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/ripemd160"
)

// DigestLength is the length in bytes of a SHA256/HASH256 digest.
const DigestLength = 32

// ErrInvalidSignature is returned when CHECKSIG/CHECKMULTISIG is given a
// pubkey or signature that does not parse.
var ErrInvalidSignature = errors.New("crypto: invalid signature or public key")

// SHA1 returns the SHA1 digest of data, backing the VM's SHA1 opcode.
func SHA1(data []byte) []byte {
	h := sha1.Sum(data)
	return h[:]
}

// SHA256 returns the SHA256 digest of data, backing the VM's SHA256 opcode.
func SHA256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// RIPEMD160 returns the RIPEMD160 digest of data.
func RIPEMD160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// Hash160 is RIPEMD160(SHA256(data)), the scriptHash/address derivation the
// simulated chain uses for DeployContract and the VM's HASH160 opcode.
func Hash160(data []byte) []byte {
	return RIPEMD160(SHA256(data))
}

// Hash256 is SHA256(SHA256(data)), backing the VM's HASH256 opcode.
func Hash256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// VerifySignature checks a DER-encoded ECDSA signature over msg against a
// secp256k1 public key. This approximates NEO's CHECKSIG, which historically
// uses secp256r1; see DESIGN.md for why secp256k1 (already an available
// dependency via btcsuite/btcd) was chosen for the emulator's approximate
// verification model instead of pulling in a second curve implementation.
func VerifySignature(pubkey, sig, msg []byte) (bool, error) {
	pub, err := btcec.ParsePubKey(pubkey, btcec.S256())
	if err != nil {
		return false, ErrInvalidSignature
	}
	parsed, err := btcec.ParseDERSignature(sig, btcec.S256())
	if err != nil {
		return false, ErrInvalidSignature
	}
	digest := sha256.Sum256(msg)
	return parsed.Verify(digest[:], pub), nil
}
