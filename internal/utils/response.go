package utils

import "launcx-order-api/internal/constant"

// Response is the uniform JSON envelope.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(data interface{}) Response {
	return Response{Code: constant.CodeSuccess, Msg: "success", Data: data}
}

func Error(code int) Response {
	return Response{Code: code, Msg: constant.ErrorMessage(code)}
}

func ErrorMsg(code int, msg string) Response {
	return Response{Code: code, Msg: msg}
}
