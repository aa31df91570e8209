package ccrypto

// Canonical signature buffer builders. Each mirrors one of the four
// buffers defined in §6 of the spec, and each is grounded on the same
// shape discovery/validation.go uses for lnd's own announcement messages:
// reconstruct the exact bytes that were signed, hash them, then verify.
//
// None of these functions touch the network or disk; they're pure
// functions from typed fields to the bytes that get fed to Sign/Verify.

var (
	domainNext            = Hash256([]byte("NEXT"))
	domainFundResponse    = Hash256([]byte("FUND_RESPONSE"))
	domainResetToken      = Hash256([]byte("RESET_TOKEN"))
	domainMutationsUpdate = Hash256([]byte("MUTATIONS_UPDATE"))

	domainResponseNonce   = Hash256([]byte("RESPONSE_NONCE"))
	domainExchangeActive  = Hash256([]byte("EXCHANGE_ACTIVE"))
	domainExchangePassive = Hash256([]byte("EXCHANGE_PASSIVE"))
	domainChannelReady    = Hash256([]byte("CHANNEL_READY"))
)

// InfoHash computes hash(local_pk ∥ remote_pk ∥ balances_hash ∥
// move_token_counter_be128), the commitment every MoveToken carries.
func InfoHash(localPK, remotePK [PublicKeySize]byte, balancesHash [HashSize]byte, moveTokenCounter uint64) [HashSize]byte {
	var counterBuf [16]byte
	PutUint128BE(&counterBuf, 0, moveTokenCounter)
	return Hash256(localPK[:], remotePK[:], balancesHash[:], counterBuf[:])
}

// MoveTokenSigBuf builds sha("NEXT") ∥ old_token ∥ info_hash, the buffer
// signed to produce a MoveToken's new_token.
func MoveTokenSigBuf(oldToken [SignatureSize]byte, infoHash [HashSize]byte) []byte {
	buf := make([]byte, 0, len(domainNext)+len(oldToken)+len(infoHash))
	buf = append(buf, domainNext[:]...)
	buf = append(buf, oldToken[:]...)
	buf = append(buf, infoHash[:]...)
	return buf
}

// ResponseSigBuf builds the §6 Response buffer:
// sha("FUND_RESPONSE") ∥ hash(request_id ∥ src_plain_lock ∥
// dest_payment_be128) ∥ hash(currency) ∥ serial_num_be128 ∥ invoice_hash.
func ResponseSigBuf(requestID [16]byte, srcPlainLock [HashSize]byte, destPaymentHi, destPaymentLo uint64, currency []byte, serialHi, serialLo uint64, invoiceHash [HashSize]byte) []byte {
	var destPaymentBuf [16]byte
	PutUint128BE(&destPaymentBuf, destPaymentHi, destPaymentLo)
	inner := Hash256(requestID[:], srcPlainLock[:], destPaymentBuf[:])

	currencyHash := Hash256(currency)

	var serialBuf [16]byte
	PutUint128BE(&serialBuf, serialHi, serialLo)

	buf := make([]byte, 0, len(domainFundResponse)+HashSize+HashSize+16+HashSize)
	buf = append(buf, domainFundResponse[:]...)
	buf = append(buf, inner[:]...)
	buf = append(buf, currencyHash[:]...)
	buf = append(buf, serialBuf[:]...)
	buf = append(buf, invoiceHash[:]...)
	return buf
}

// ResetTokenSigBuf builds sha("RESET_TOKEN") ∥ local_pk ∥ remote_pk ∥
// move_token_counter_be128, the buffer a party signs to offer reset terms.
func ResetTokenSigBuf(localPK, remotePK [PublicKeySize]byte, moveTokenCounter uint64) []byte {
	var counterBuf [16]byte
	PutUint128BE(&counterBuf, 0, moveTokenCounter)

	buf := make([]byte, 0, len(domainResetToken)+2*PublicKeySize+16)
	buf = append(buf, domainResetToken[:]...)
	buf = append(buf, localPK[:]...)
	buf = append(buf, remotePK[:]...)
	buf = append(buf, counterBuf[:]...)
	return buf
}

// MutationsUpdateSigBuf builds sha("MUTATIONS_UPDATE") ∥ node_pk ∥
// len_be64 ∥ mutations_canon ∥ time_hash ∥ session_id ∥ counter_be64 ∥
// rand_nonce.
func MutationsUpdateSigBuf(nodePK [PublicKeySize]byte, mutationsCanon []byte, timeHash [HashSize]byte, sessionID [16]byte, counter uint64, randNonce [16]byte) []byte {
	lenBuf := Uint64BE(uint64(len(mutationsCanon)))
	counterBuf := Uint64BE(counter)

	buf := make([]byte, 0, len(domainMutationsUpdate)+PublicKeySize+8+len(mutationsCanon)+HashSize+16+8+16)
	buf = append(buf, domainMutationsUpdate[:]...)
	buf = append(buf, nodePK[:]...)
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, mutationsCanon...)
	buf = append(buf, timeHash[:]...)
	buf = append(buf, sessionID[:]...)
	buf = append(buf, counterBuf[:]...)
	buf = append(buf, randNonce[:]...)
	return buf
}

// ResponseNonceSigBuf builds the §4.4 buffer the responder signs over
// ResponseNonce: sha("RESPONSE_NONCE") ∥ prev_hash ∥ rand_nonce_r ∥ pk_r.
func ResponseNonceSigBuf(prevHash [HashSize]byte, randNonceR [16]byte, publicKeyR [PublicKeySize]byte) []byte {
	buf := make([]byte, 0, len(domainResponseNonce)+HashSize+16+PublicKeySize)
	buf = append(buf, domainResponseNonce[:]...)
	buf = append(buf, prevHash[:]...)
	buf = append(buf, randNonceR[:]...)
	buf = append(buf, publicKeyR[:]...)
	return buf
}

// ExchangeActiveSigBuf builds the §4.4 buffer the initiator signs over
// ExchangeActive: sha("EXCHANGE_ACTIVE") ∥ prev_hash ∥ dh_pub_i ∥ salt_i.
func ExchangeActiveSigBuf(prevHash [HashSize]byte, dhPubI [DHKeySize]byte, saltI [16]byte) []byte {
	buf := make([]byte, 0, len(domainExchangeActive)+HashSize+DHKeySize+16)
	buf = append(buf, domainExchangeActive[:]...)
	buf = append(buf, prevHash[:]...)
	buf = append(buf, dhPubI[:]...)
	buf = append(buf, saltI[:]...)
	return buf
}

// ExchangePassiveSigBuf builds the §4.4 buffer the responder signs over
// ExchangePassive: sha("EXCHANGE_PASSIVE") ∥ prev_hash ∥ dh_pub_r ∥ salt_r.
func ExchangePassiveSigBuf(prevHash [HashSize]byte, dhPubR [DHKeySize]byte, saltR [16]byte) []byte {
	buf := make([]byte, 0, len(domainExchangePassive)+HashSize+DHKeySize+16)
	buf = append(buf, domainExchangePassive[:]...)
	buf = append(buf, prevHash[:]...)
	buf = append(buf, dhPubR[:]...)
	buf = append(buf, saltR[:]...)
	return buf
}

// ChannelReadySigBuf builds the §4.4 buffer the initiator signs over
// ChannelReady: sha("CHANNEL_READY") ∥ prev_hash.
func ChannelReadySigBuf(prevHash [HashSize]byte) []byte {
	buf := make([]byte, 0, len(domainChannelReady)+HashSize)
	buf = append(buf, domainChannelReady[:]...)
	buf = append(buf, prevHash[:]...)
	return buf
}
