package market

// NoDataMessage is the error text of a Result for a request that produced no rows.
const NoDataMessage = "No data returned"

// Result 是对外统一返回的 {status, data, error} 包装。
// FAILED 时 data 为空且 error 非空；OK 时 data 非空且 error 为空。
type Result struct {
	Status Status `json:"status" yaml:"status"`
	Data   Table  `json:"data" yaml:"data"`
	Error  string `json:"error" yaml:"error"`
}

// OK wraps a non-empty table. An empty table degrades to Failed(NoDataMessage).
func OK(data Table) Result {
	if data.IsEmpty() {
		return Failed(NoDataMessage)
	}
	return Result{Status: StatusOK, Data: data}
}

// Failed builds a FAILED result. An empty message becomes NoDataMessage.
func Failed(msg string) Result {
	if msg == "" {
		msg = NoDataMessage
	}
	return Result{Status: StatusFailed, Data: Table{}, Error: msg}
}

func (r Result) IsOK() bool {
	return r.Status == StatusOK
}
