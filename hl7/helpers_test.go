package hl7

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sample message from the HL7 normative edition
var sampleHL7 = strings.Join([]string{
	`MSH|^~\&|GHH LAB|ELAB-3|GHH OE|BLDG4|200202150930||ORU^R01|CNTRL-3456|P|2.4`,
	`PID|||555-44-4444||EVERYWOMAN^EVE^E^^^^L|JONES|196203520|F|||153 FERNWOOD DR.^^STATESVILLE^OH^35292||(206)3345232|(206)752-121||||AC555444444||67-A4335^OH^20030520`,
	`OBR|1|845439^GHH OE|1045813^GHH LAB|1554-5^GLUCOSE|||200202150730||||||||555-55-5555^PRIMARY^PATRICIA P^^^^MD^^LEVEL SEVEN HEALTHCARE, INC.|||||||||F||||||444-44-4444^HIPPOCRATES^HOWARD H^^^^MD`,
	`OBX|1|SN|1554-5^GLUCOSE^POST 12H CFST:MCNC:PT:SER/PLAS:QN||^182|mg/dl|70_105|H|||F`,
	"OBX|2|FN|1553-5^GLUCOSE^POST 12H CFST:MCNC:PT:SER/PLAS:QN||^182|mg/dl|70_105|H|||F\r",
}, "\r")

var nonStandardHL7 = "MSH$%~\\&$GHH LAB\rPID$$$555-44-4444$$EVERYWOMAN%EVE%E%%%L"

func mustParse(t *testing.T, text string) *Message {
	t.Helper()

	msg, err := Parse(text)
	require.NoError(t, err)
	require.NotNil(t, msg)

	return msg
}

func mustGet(t *testing.T, c interface {
	Get(indices ...int) (Element, error)
}, indices ...int,
) Element {
	t.Helper()

	elem, err := c.Get(indices...)
	require.NoError(t, err)

	return elem
}
