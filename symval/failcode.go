package symval

// FailCode names a member of the failure taxonomy from spec.md §7. Values
// match the `check_<code>` tracking-name convention confirmed by the
// original project's test_scripts.py (e.g. "check_equalverify").
type FailCode string

const (
	FailDataTooLong                    FailCode = "data_too_long"
	FailLengthMismatch                 FailCode = "length_mismatch"
	FailScriptNumOutOfBounds           FailCode = "scriptnum_out_of_bounds"
	FailScriptNumEncodingExceedsDatalen FailCode = "scriptnum_encoding_exceeds_datalen"
	FailScriptNumMinimalEncoding        FailCode = "scriptnum_minimal_encoding"
	FailNegativeArgument                FailCode = "negative_argument"
	FailArgumentAboveBounds             FailCode = "argument_above_bounds"
	FailBranchConditionInvalid          FailCode = "branch_condition_invalid"
	FailMinimalIf                       FailCode = "minimalif"
	FailInvalidPubkey                   FailCode = "invalid_pubkey"
	FailInvalidPubkeyLength             FailCode = "invalid_pubkey_length"
	FailInvalidSignatureLength          FailCode = "invalid_signature_length"
	FailInvalidSignatureEncoding        FailCode = "invalid_signature_encoding"
	FailSignatureLowS                   FailCode = "signature_low_s"
	FailSignatureBadHashtype            FailCode = "signature_bad_hashtype"
	FailSignatureExplicitSighashAll     FailCode = "signature_explicit_sighash_all"
	FailSignatureNullfail                FailCode = "signature_nullfail"
	FailChecksigverify                  FailCode = "checksigverify"
	FailCheckmultisigverify              FailCode = "checkmultisigverify"
	FailCheckmultisigBugbyteZero         FailCode = "checkmultisig_bugbyte_zero"
	FailEcmultverify                     FailCode = "ecmultverify"
	FailTweakverify                      FailCode = "tweakverify"
	FailKnownArgsDifferentResult         FailCode = "known_args_different_result"
	FailKnownResultDifferentArgs         FailCode = "known_result_different_args"
	FailLocktimeTypeMismatch             FailCode = "locktime_type_mismatch"
	FailLocktimeTimelockInEffect         FailCode = "locktime_timelock_in_effect"
	FailCltvNsequenceFinal               FailCode = "cltv_nsequence_final"
	FailNsequenceTimelockInEffect        FailCode = "nsequence_timelock_in_effect"
	FailNsequenceTypeMismatch            FailCode = "nsequence_type_mismatch"
	FailBadTxVersion                     FailCode = "bad_tx_version"
	FailVerify                           FailCode = "verify"
	FailEqualverify                      FailCode = "equalverify"
	FailNumequalverify                   FailCode = "numequalverify"
	FailFinalVerify                      FailCode = "final_verify"
	FailSha256ContextTooShort            FailCode = "sha256_context_too_short"
	FailSha256ContextTooLong             FailCode = "sha256_context_too_long"
	FailInvalidSha256Context             FailCode = "invalid_sha256_context"
	FailInt64OutOfBounds                 FailCode = "int64_out_of_bounds"
	FailInvalidArguments                 FailCode = "invalid_arguments"
	FailOutOfMoneyRange                  FailCode = "out_of_money_range"
	FailLE64WrongSize                    FailCode = "le64_wrong_size"
	FailLE32WrongSize                    FailCode = "le32_wrong_size"
	FailCommitmentWrongSize              FailCode = "commitment_wrong_size"
	FailNonMinimalPush                   FailCode = "non_minimal_push"
)

// TrackingName returns the "check_<code>" tracking-name form used when an
// assertion is tracked for unsat-core attribution.
func (c FailCode) TrackingName() string {
	return "check_" + string(c)
}
