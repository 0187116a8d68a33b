package walletkeys

type ErrorCode string

const (
	CodeInvalidAccountAddress ErrorCode = "invalid_account_address"
	CodeInvalidVaultIndex     ErrorCode = "invalid_vault_index"
	CodeUnsupportedAsset      ErrorCode = "unsupported_asset"
	CodeOwnerOffCurve         ErrorCode = "owner_off_curve"
	CodeInvalidConfiguration  ErrorCode = "invalid_configuration"
	CodeDerivationFailed      ErrorCode = "address_derivation_failed"
)

type KeyError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *KeyError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *KeyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func wrapKeyError(code ErrorCode, message string, cause error) *KeyError {
	return &KeyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
