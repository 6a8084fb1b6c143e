package protocol

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/TemirB/sensor-relay/internal/domain"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Field numbers of the sensor Data message:
//
//	message Data {
//	  uint32 device_id = 1;
//	  uint64 event_id = 2;
//	  float humidity = 3;
//	  float temperature = 4;
//	  google.protobuf.Timestamp read_time = 5;
//	}
const (
	fieldDeviceID    protowire.Number = 1
	fieldEventID     protowire.Number = 2
	fieldHumidity    protowire.Number = 3
	fieldTemperature protowire.Number = 4
	fieldReadTime    protowire.Number = 5

	fieldSeconds protowire.Number = 1
	fieldNanos   protowire.Number = 2
)

var ErrMalformed = errors.New("malformed reading")

// MarshalReading encodes r in proto3 wire format, omitting zero scalars.
func MarshalReading(r domain.Reading) []byte {
	var b []byte
	if r.DeviceID != 0 {
		b = protowire.AppendTag(b, fieldDeviceID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.DeviceID))
	}
	if r.EventID != 0 {
		b = protowire.AppendTag(b, fieldEventID, protowire.VarintType)
		b = protowire.AppendVarint(b, r.EventID)
	}
	if r.Humidity != 0 {
		b = protowire.AppendTag(b, fieldHumidity, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(r.Humidity))
	}
	if r.Temperature != 0 {
		b = protowire.AppendTag(b, fieldTemperature, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(r.Temperature))
	}
	if !r.ReadTime.IsZero() {
		b = protowire.AppendTag(b, fieldReadTime, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalTimestamp(r.ReadTime))
	}
	return b
}

func marshalTimestamp(t time.Time) []byte {
	var b []byte
	if s := t.Unix(); s != 0 {
		b = protowire.AppendTag(b, fieldSeconds, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s))
	}
	if n := int32(t.Nanosecond()); n != 0 {
		b = protowire.AppendTag(b, fieldNanos, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(n)))
	}
	return b
}

// UnmarshalReading decodes a Data message. Unknown fields are skipped; a
// message without read_time is rejected.
func UnmarshalReading(b []byte) (domain.Reading, error) {
	var (
		r       domain.Reading
		hasTime bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Reading{}, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldDeviceID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Reading{}, malformed(protowire.ParseError(n))
			}
			r.DeviceID = uint32(v)
			b = b[n:]
		case num == fieldEventID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Reading{}, malformed(protowire.ParseError(n))
			}
			r.EventID = v
			b = b[n:]
		case (num == fieldHumidity || num == fieldTemperature) && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return domain.Reading{}, malformed(protowire.ParseError(n))
			}
			if num == fieldHumidity {
				r.Humidity = math.Float32frombits(v)
			} else {
				r.Temperature = math.Float32frombits(v)
			}
			b = b[n:]
		case num == fieldReadTime && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return domain.Reading{}, malformed(protowire.ParseError(n))
			}
			ts, err := unmarshalTimestamp(v)
			if err != nil {
				return domain.Reading{}, err
			}
			r.ReadTime = ts
			hasTime = true
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.Reading{}, malformed(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !hasTime {
		return domain.Reading{}, fmt.Errorf("%w: read_time missing", ErrMalformed)
	}
	return r, nil
}

func unmarshalTimestamp(b []byte) (time.Time, error) {
	var (
		secs  int64
		nanos int32
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return time.Time{}, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.VarintType && (num == fieldSeconds || num == fieldNanos) {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return time.Time{}, malformed(protowire.ParseError(n))
			}
			if num == fieldSeconds {
				secs = int64(v)
			} else {
				nanos = int32(v)
			}
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return time.Time{}, malformed(protowire.ParseError(n))
		}
		b = b[n:]
	}

	ts := &timestamppb.Timestamp{Seconds: secs, Nanos: nanos}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, fmt.Errorf("%w: read_time: %v", ErrMalformed, err)
	}
	return ts.AsTime(), nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}
