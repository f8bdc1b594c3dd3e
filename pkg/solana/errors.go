package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the string key the runtime reports for a failed
// transaction.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
	TransactionErrorMissingSignatureForFee  TransactionErrorKey = "MissingSignatureForFee"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure         TransactionErrorKey = "SanitizeFailure"
)

// InstructionErrorKey is the string key the runtime reports for a failed
// instruction.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorNotEnoughAccountKeys      InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorInvalidSeeds              InstructionErrorKey = "InvalidSeeds"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// CustomError is the numerical error returned by a non-system program. For
// Anchor programs such as the auction house, codes start at 6000.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", int(c))
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}
	if i.CustomError() != nil {
		return InstructionErrorCustom
	}
	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

func (i InstructionError) jsonValue() interface{} {
	if ce, ok := i.Err.(CustomError); ok {
		return []interface{}{i.Index, map[string]interface{}{string(InstructionErrorCustom): int(ce)}}
	}
	return []interface{}{i.Index, i.Err.Error()}
}

// TransactionError is the runtime's verdict on a rejected transaction. The raw
// JSON value is retained so callers can surface it unmodified.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
	raw              interface{}
}

// NewTransactionError creates a TransactionError with no instruction detail.
func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{
		key: key,
		raw: string(key),
	}
}

// TransactionErrorFromInstructionError wraps an instruction failure the way
// the runtime reports it.
func TransactionErrorFromInstructionError(err *InstructionError) *TransactionError {
	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: err,
		raw: map[string]interface{}{
			string(TransactionErrorInstructionError): err.jsonValue(),
		},
	}
}

// ParseRPCError extracts the transaction error carried in the data of a
// jsonrpc.RPCError, as returned by sendTransaction preflight failures. A nil
// result with a nil error means the RPC error carried no transaction error.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	if txErr, ok := data["err"]; ok && txErr != nil {
		return ParseTransactionError(txErr)
	}

	return nil, nil
}

// ParseTransactionError parses the JSON "err" value reported by the RPC API.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{key: TransactionErrorKey(t), raw: raw}, nil
	case map[string]interface{}:
		if len(t) != 1 {
			return nil, errors.Errorf("invalid transaction result size: %d", len(t))
		}

		for k, v := range t {
			if k != string(TransactionErrorInstructionError) {
				return &TransactionError{key: TransactionErrorKey(k), raw: raw}, nil
			}

			instructionErr, err := parseInstructionError(v)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse instruction error")
			}

			return &TransactionError{
				key:              TransactionErrorInstructionError,
				instructionError: instructionErr,
				raw:              raw,
			}, nil
		}
	}

	return nil, errors.Errorf("unhandled error type %T", raw)
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	values, ok := v.([]interface{})
	if !ok {
		return nil, errors.New("unexpected instruction error format")
	}
	if len(values) != 2 {
		return nil, errors.Errorf("unexpected entries in InstructionError tuple: %d", len(values))
	}

	index, err := parseJSONNumber(values[0])
	if err != nil {
		return nil, err
	}

	e := &InstructionError{Index: index}
	switch t := values[1].(type) {
	case string:
		e.Err = errors.New(t)
	case map[string]interface{}:
		if len(t) != 1 {
			return nil, errors.Errorf("invalid instruction result size: %d", len(t))
		}

		for k, v := range t {
			if k != string(InstructionErrorCustom) {
				e.Err = errors.New(k)
				break
			}

			code, err := parseJSONNumber(v)
			if err != nil {
				return nil, errors.Wrap(err, "invalid custom error code")
			}
			e.Err = CustomError(code)
		}
	default:
		return nil, errors.Errorf("unhandled instruction error type %T", t)
	}

	return e, nil
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

// JSONString returns the error exactly as the runtime reported it.
func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw)
	return string(b), err
}

func parseJSONNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value in InstructionError tuple: %v", v)
		}
		return int(i), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value in InstructionError tuple: %v", v)
		}
		return int(i), nil
	case float64:
		return int(n), nil
	}

	return 0, errors.Errorf("non numeric value in InstructionError tuple: %v", v)
}
