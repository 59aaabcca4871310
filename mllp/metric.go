package mllp

import (
	"sync/atomic"
)

// ClientMetrics contains atomic metrics for a client.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ClientMetrics struct {
	// ConnectCount indicates the number of established connections.
	ConnectCount atomic.Uint64
	// ConnectErrCount indicates the number of failed connection attempts.
	ConnectErrCount atomic.Uint64

	// MsgSendCount indicates the number of frames sent.
	MsgSendCount atomic.Uint64
	// MsgRecvCount indicates the number of response frames received.
	MsgRecvCount atomic.Uint64
	// MsgErrCount indicates the number of failed exchanges.
	MsgErrCount atomic.Uint64
}

func (m *ClientMetrics) incConnectCount() {
	m.ConnectCount.Add(1)
}

func (m *ClientMetrics) incConnectErrCount() {
	m.ConnectErrCount.Add(1)
}

func (m *ClientMetrics) incMsgSendCount() {
	m.MsgSendCount.Add(1)
}

func (m *ClientMetrics) incMsgRecvCount() {
	m.MsgRecvCount.Add(1)
}

func (m *ClientMetrics) incMsgErrCount() {
	m.MsgErrCount.Add(1)
}

// ServerMetrics contains atomic metrics for a server.
type ServerMetrics struct {
	// ConnAcceptCount indicates the number of accepted connections.
	ConnAcceptCount atomic.Uint64
	// ConnActiveGauge indicates the number of open connections.
	ConnActiveGauge atomic.Int64

	// FrameRecvCount indicates the number of frames received.
	FrameRecvCount atomic.Uint64
	// FrameSendCount indicates the number of response frames sent.
	FrameSendCount atomic.Uint64
	// FrameErrCount indicates the number of malformed frames and handler errors.
	FrameErrCount atomic.Uint64
}

func (m *ServerMetrics) incConnAcceptCount() {
	m.ConnAcceptCount.Add(1)
	m.ConnActiveGauge.Add(1)
}

func (m *ServerMetrics) decConnActiveGauge() {
	m.ConnActiveGauge.Add(-1)
}

func (m *ServerMetrics) incFrameRecvCount() {
	m.FrameRecvCount.Add(1)
}

func (m *ServerMetrics) incFrameSendCount() {
	m.FrameSendCount.Add(1)
}

func (m *ServerMetrics) incFrameErrCount() {
	m.FrameErrCount.Add(1)
}
