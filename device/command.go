package device

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MessageID enumerates the outbound commands the encoder understands.
type MessageID int

const (
	MessageUnknown MessageID = iota
	MessageGetVersions
	MessageStagpsPasswordGenerate
	MessageStagps8PasswordGenerate
	MessageSetPar
	MessageColdStart
	MessageGpsSuspend
	MessageGpsRestart
	MessageSavePar
	MessageSystemReset
)

func (m MessageID) String() string {
	switch m {
	case MessageGetVersions:
		return "get-versions"
	case MessageStagpsPasswordGenerate:
		return "stagps-password-generate"
	case MessageStagps8PasswordGenerate:
		return "stagps8-password-generate"
	case MessageSetPar:
		return "set-par"
	case MessageColdStart:
		return "cold-start"
	case MessageGpsSuspend:
		return "gps-suspend"
	case MessageGpsRestart:
		return "gps-restart"
	case MessageSavePar:
		return "save-par"
	case MessageSystemReset:
		return "system-reset"
	}
	return "unknown"
}

var ErrParameterCount = errors.New("parameter count mismatch")

// Command name literals on the wire.
const (
	cmdGetVersions    = "PSTMGETSWVER,255"
	cmdStagpsPassGen  = "PSTMSTAGPSPASSGEN"
	cmdStagps8PassGen = "PSTMSTAGPS8PASSGEN"
	cmdSetPar         = "PSTMSETPAR"
	cmdColdStart      = "PSTMCOLD"
	cmdGpsSuspend     = "PSTMGPSSUSPEND"
	cmdGpsRestart     = "PSTMGPSRESTART"
	cmdSavePar        = "PSTMSAVEPAR"
	cmdSystemReset    = "PSTMSRR"
)

// EncodeCommand renders a message into the sentence payload written to the
// receiver. The payload excludes the leading '$' and the '*HH' trailer;
// the transport writer wraps it just before the write, mirroring how the
// validator strips them on the inbound side. An unsupported id produces no
// bytes and no error.
func EncodeCommand(id MessageID, st *State, params [][]byte, logger *zap.Logger) ([]byte, error) {
	switch id {
	case MessageGetVersions:
		return []byte(cmdGetVersions), nil

	case MessageStagpsPasswordGenerate:
		if len(params) != 2 {
			return nil, fmt.Errorf("%w: %s wants 2 parameters, got %d", ErrParameterCount, id, len(params))
		}
		payload := []byte(cmdStagpsPassGen)
		payload = appendField(payload, passwordTimestamp(st, logger))
		return appendFields(payload, params), nil

	case MessageStagps8PasswordGenerate:
		if len(params) != 3 {
			return nil, fmt.Errorf("%w: %s wants 3 parameters, got %d", ErrParameterCount, id, len(params))
		}
		payload := []byte(cmdStagps8PassGen)
		payload = appendField(payload, passwordTimestamp(st, logger))
		return appendFields(payload, params), nil

	case MessageSetPar:
		return appendFields([]byte(cmdSetPar), params), nil
	case MessageColdStart:
		return appendFields([]byte(cmdColdStart), params), nil
	case MessageGpsSuspend:
		return appendFields([]byte(cmdGpsSuspend), params), nil
	case MessageGpsRestart:
		return appendFields([]byte(cmdGpsRestart), params), nil
	case MessageSavePar:
		return appendFields([]byte(cmdSavePar), params), nil
	case MessageSystemReset:
		return appendFields([]byte(cmdSystemReset), params), nil
	}

	logger.Warn("unsupported outbound message", zap.Int("id", int(id)))
	return nil, nil
}

// passwordTimestamp picks the receiver clock when available. Falling back
// to the host clock produces a password the assistance server may reject
// when receiver and host time diverge.
func passwordTimestamp(st *State, logger *zap.Logger) []byte {
	if ts, status := st.Timestamp(); status == TimestampAvailable {
		return []byte(fmt.Sprintf("%d", ts/1000))
	}
	logger.Warn("no receiver timestamp, generating password from host clock")
	return []byte(fmt.Sprintf("%d", time.Now().Unix()))
}

func appendField(payload, field []byte) []byte {
	payload = append(payload, ',')
	return append(payload, field...)
}

func appendFields(payload []byte, fields [][]byte) []byte {
	for _, f := range fields {
		payload = appendField(payload, f)
	}
	return payload
}
