package router

import (
	"net/http"
	"strings"
)

type methodTyp uint

const (
	mCONNECT methodTyp = 1 << iota
	mDELETE
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
	mTRACE
)

var mALL = mCONNECT | mDELETE | mGET | mHEAD |
	mOPTIONS | mPATCH | mPOST | mPUT | mTRACE

// MethodAny registers a route for every method.
const MethodAny = "*"

var methodMap = map[string]methodTyp{
	http.MethodConnect: mCONNECT,
	http.MethodDelete:  mDELETE,
	http.MethodGet:     mGET,
	http.MethodHead:    mHEAD,
	http.MethodOptions: mOPTIONS,
	http.MethodPatch:   mPATCH,
	http.MethodPost:    mPOST,
	http.MethodPut:     mPUT,
	http.MethodTrace:   mTRACE,
	MethodAny:          mALL,
}

func parseMethod(method string) (methodTyp, bool) {
	mt, ok := methodMap[strings.ToUpper(method)]
	return mt, ok
}

// each calls fn for every single method bit set in mt.
func (mt methodTyp) each(fn func(methodTyp)) {
	for bit := mCONNECT; bit <= mTRACE; bit <<= 1 {
		if mt&bit != 0 {
			fn(bit)
		}
	}
}

func (mt methodTyp) String() string {
	for name, typ := range methodMap {
		if typ == mt && name != MethodAny {
			return name
		}
	}
	return ""
}
