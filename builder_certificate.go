package mesh

// certificate channel has no pending slot: each certificate call appends
// a complete (or completable) Certificate directly to Body.Certificates,
// and the script-attaching calls below mutate the last certificate
// pushed, matching the teacher's "operate on the tail of the list"
// shape for this one channel (spec.md §4.1).

func (t *TxBuilder) pushCertificate(c Certificate) *TxBuilder {
	t.Body.Certificates = append(t.Body.Certificates, c)
	return t
}

func (t *TxBuilder) lastCertificate() *Certificate {
	n := len(t.Body.Certificates)
	if n == 0 {
		return nil
	}
	return &t.Body.Certificates[n-1]
}

// RegisterPoolCertificate appends a pool-registration certificate.
func (t *TxBuilder) RegisterPoolCertificate(params PoolParams) *TxBuilder {
	return t.pushCertificate(Certificate{
		Kind: CertificateBasic,
		Cert: CertPayload{Type: CertRegisterPool, PoolParams: &params},
	})
}

// RetirePoolCertificate appends a pool-retirement certificate effective
// at epoch.
func (t *TxBuilder) RetirePoolCertificate(poolID string, epoch uint64) *TxBuilder {
	return t.pushCertificate(Certificate{
		Kind: CertificateBasic,
		Cert: CertPayload{Type: CertRetirePool, PoolID: poolID, Epoch: epoch},
	})
}

// RegisterStakeCertificate appends a stake-registration certificate.
func (t *TxBuilder) RegisterStakeCertificate(stakeAddress string) *TxBuilder {
	return t.pushCertificate(Certificate{
		Kind: CertificateBasic,
		Cert: CertPayload{Type: CertRegisterStake, StakeAddress: stakeAddress},
	})
}

// DeregisterStakeCertificate appends a stake-deregistration certificate.
func (t *TxBuilder) DeregisterStakeCertificate(stakeAddress string) *TxBuilder {
	return t.pushCertificate(Certificate{
		Kind: CertificateBasic,
		Cert: CertPayload{Type: CertDeregisterStake, StakeAddress: stakeAddress},
	})
}

// DelegateStakeCertificate appends a stake-delegation certificate
// delegating stakeAddress to poolID.
func (t *TxBuilder) DelegateStakeCertificate(stakeAddress, poolID string) *TxBuilder {
	return t.pushCertificate(Certificate{
		Kind: CertificateBasic,
		Cert: CertPayload{Type: CertDelegateStake, StakeAddress: stakeAddress, PoolID: poolID},
	})
}

// CertificateScript pops the last pushed certificate and re-pushes it as
// script-governed, attaching a script source by inline CBOR and
// preserving any prior redeemer. With no version given it promotes to
// SimpleScriptCertificate; with a Plutus version it promotes to
// ScriptCertificate.
func (t *TxBuilder) CertificateScript(cborHex string, version ...PlutusVersion) *TxBuilder {
	c := t.lastCertificate()
	if c == nil {
		return t
	}
	v := PlutusVersion("")
	if len(version) > 0 {
		v = version[0]
	}
	if v == "" {
		c.Kind = CertificateSimpleScript
	} else {
		c.Kind = CertificateScript
	}
	c.ScriptSource = ScriptSource{Kind: ScriptSourceProvided, ScriptCBOR: cborHex, Version: v}
	return t
}

// CertificateTxInReference pops the last pushed certificate and
// re-pushes it as script-governed, attaching a script source by
// reference to an on-chain UTxO and preserving any prior redeemer. With
// no version given it promotes to SimpleScriptCertificate; with a
// Plutus version it promotes to ScriptCertificate.
func (t *TxBuilder) CertificateTxInReference(txHash string, txIndex uint32, scriptHash string, version ...PlutusVersion) *TxBuilder {
	c := t.lastCertificate()
	if c == nil {
		return t
	}
	v := PlutusVersion("")
	if len(version) > 0 {
		v = version[0]
	}
	if v == "" {
		c.Kind = CertificateSimpleScript
	} else {
		c.Kind = CertificateScript
	}
	c.ScriptSource = ScriptSource{
		Kind:       ScriptSourceInline,
		TxHash:     txHash,
		TxIndex:    txIndex,
		ScriptHash: scriptHash,
		Version:    v,
	}
	return t
}

// CertificateRedeemerValue sets the last pushed certificate's redeemer.
// Valid only on a Script certificate.
func (t *TxBuilder) CertificateRedeemerValue(data BuilderData, exUnits ...ExUnits) (*TxBuilder, error) {
	c := t.lastCertificate()
	if c == nil {
		return t, nil
	}
	if c.Kind != CertificateScript {
		return t, misuseErr("certificateRedeemerValue", "Basic/SimpleScript")
	}
	redeemer := NewRedeemer(data)
	if len(exUnits) > 0 {
		redeemer.ExUnits = exUnits[0]
	}
	c.Redeemer = redeemer
	return t, nil
}
