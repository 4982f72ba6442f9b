package handler

import (
	"math"
	"math/big"

	"github.com/yndnr/tokgate/internal/core/domain"
)

// Response is the {code, data, msg} envelope of the auth and echo routes.
type Response struct {
	Code int    `json:"code"`
	Data any    `json:"data"`
	Msg  string `json:"msg"`
}

// CheckLoginResponse is the body of a successful check_login.
type CheckLoginResponse struct {
	Msg  string       `json:"msg"`
	Data *domain.User `json:"data"`
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
}

// CredentialsRequest is the body of sign_in and sign_up.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// EchoPost is the body accepted and returned by POST /json.
type EchoPost struct {
	ID    uint32 `json:"id"`
	Value string `json:"value"`
}

// FormJSON is the body of POST /form/json.
type FormJSON struct {
	Name string `json:"name"`
	Age  int32  `json:"age"`
}

// FormURLEncodedResponse echoes the fields of POST /form/form-urlencoded.
type FormURLEncodedResponse struct {
	Code   int    `json:"code"`
	Method string `json:"method"`
	ID     string `json:"id"`
	Value  string `json:"value"`
	Fact   string `json:"fact"`
}

// FormJSONResponse is the reply to POST /form/json.
type FormJSONResponse struct {
	Code   int    `json:"code"`
	Method string `json:"method"`
	Msg    string `json:"msg"`
}

// SampleDocument is the fixed GET /json body. 128-bit fields are big.Int so
// they encode as bare JSON numbers.
type SampleDocument struct {
	U8     uint8            `json:"u8"`
	U16    uint16           `json:"u16"`
	U32    uint32           `json:"u32"`
	U64    uint64           `json:"u64"`
	U128   *big.Int         `json:"u128"`
	I8     int8             `json:"i8"`
	I16    int16            `json:"i16"`
	I32    int32            `json:"i32"`
	I64    int64            `json:"i64"`
	I128   *big.Int         `json:"i128"`
	F32    float32          `json:"f32"`
	F64    float64          `json:"f64"`
	Bool   bool             `json:"bool"`
	String string           `json:"string"`
	Array  []SampleDocument `json:"array"`
}

func zeroSample() SampleDocument {
	return SampleDocument{
		U128:  new(big.Int),
		I128:  new(big.Int),
		Array: []SampleDocument{},
	}
}

func newSampleDocument() SampleDocument {
	one := big.NewInt(1)
	u128 := new(big.Int).Sub(new(big.Int).Lsh(one, 128), one)
	i128 := new(big.Int).Neg(new(big.Int).Lsh(one, 127))

	return SampleDocument{
		U8:     math.MaxUint8,
		U16:    math.MaxUint16,
		U32:    math.MaxUint32,
		U64:    math.MaxUint64,
		U128:   u128,
		I8:     math.MinInt8,
		I16:    math.MinInt16,
		I32:    math.MinInt32,
		I64:    math.MinInt64,
		I128:   i128,
		F32:    math.MaxFloat32,
		F64:    math.MaxFloat64,
		Bool:   true,
		String: "JsonData!",
		Array:  []SampleDocument{zeroSample()},
	}
}
