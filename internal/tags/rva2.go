package tags

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// RVA2 frame body layout (ID3v2.4):
//
//	identification   <text string> $00
//	channel type     $xx
//	volume adjust    $xx $xx         signed, 1/512 dB steps
//	bits for peak    $xx
//	peak volume      $xx ...
//
// Only the master-volume channel with a 16-bit peak is handled; that is what
// this tool writes and what the common taggers emit.
const rva2MasterChannel = 1

var errMalformedRVA2 = errors.New("malformed RVA2 frame")

type rva2Record struct {
	ident   string
	channel byte
	gainDB  float64
	peak    uint16
}

func encodeRVA2(ident string, gainDB float64, peak uint16) []byte {
	units := int(math.Round(gainDB * 512.0))
	units = min(max(units, math.MinInt16), math.MaxInt16)

	body := make([]byte, 0, len(ident)+7)
	body = append(body, ident...)
	body = append(body, 0, rva2MasterChannel)
	body = binary.BigEndian.AppendUint16(body, uint16(int16(units))) //nolint:gosec // two's complement encoding
	body = append(body, 16)
	body = binary.BigEndian.AppendUint16(body, peak)

	return body
}

func decodeRVA2(body []byte) (rva2Record, error) {
	sep := bytes.IndexByte(body, 0)
	if sep < 0 || len(body) < sep+5 {
		return rva2Record{}, errMalformedRVA2
	}

	rec := rva2Record{
		ident:   string(body[:sep]),
		channel: body[sep+1],
		gainDB:  float64(int16(binary.BigEndian.Uint16(body[sep+2:]))) / 512.0, //nolint:gosec // two's complement decoding
	}

	if bits := body[sep+4]; bits != 16 || len(body) < sep+7 {
		return rva2Record{}, errMalformedRVA2
	}

	rec.peak = binary.BigEndian.Uint16(body[sep+5:])

	return rec, nil
}
