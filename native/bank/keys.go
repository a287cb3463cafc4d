package bank

var (
	tokenPrefix     = []byte("bank/token/")
	balancePrefix   = []byte("bank/balance/")
	allowancePrefix = []byte("bank/allowance/")
)

func tokenKey(symbol string) []byte {
	buf := make([]byte, 0, len(tokenPrefix)+len(symbol))
	buf = append(buf, tokenPrefix...)
	return append(buf, symbol...)
}

func balanceKey(symbol string, holder [20]byte) []byte {
	buf := make([]byte, 0, len(balancePrefix)+len(symbol)+1+len(holder))
	buf = append(buf, balancePrefix...)
	buf = append(buf, symbol...)
	buf = append(buf, '/')
	return append(buf, holder[:]...)
}

func allowanceKey(symbol string, owner, spender [20]byte) []byte {
	buf := make([]byte, 0, len(allowancePrefix)+len(symbol)+2+2*len(owner))
	buf = append(buf, allowancePrefix...)
	buf = append(buf, symbol...)
	buf = append(buf, '/')
	buf = append(buf, owner[:]...)
	buf = append(buf, '/')
	return append(buf, spender[:]...)
}
