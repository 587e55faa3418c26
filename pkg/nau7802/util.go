package nau7802

import (
	"fmt"
)

// Sample is a signed 24-bit conversion result in the range [-2^23, 2^23-1].
type Sample = int32

const (
	MinSample Sample = -1 << 23
	MaxSample Sample = 1<<23 - 1
)

// DecodeSample interprets a 3-byte, 24-bit signed value
// in two's complement form, MSB first, as a 32-bit int.
func DecodeSample(data []byte) Sample {
	raw := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
	// move bit 23 into the sign position, then shift back arithmetically
	return int32(raw<<8) >> 8
}

// EncodeSample is the inverse of [DecodeSample]; values outside the 24-bit
// range are saturated.
func EncodeSample(s Sample, p []byte) {
	if s > MaxSample {
		s = MaxSample
	}
	if s < MinSample {
		s = MinSample
	}
	u := uint32(s) & 0xFFFFFF
	p[0], p[1], p[2] = byte(u>>16), byte(u>>8), byte(u)
}

// GainFromFactor maps an amplification of 1..128 to its code.
func GainFromFactor(factor int) (Gain, error) {
	for g := Gain1; g <= Gain128; g++ {
		if g.Factor() == factor {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%d is not a valid gain, choose from 1,2,4,8,16,32,64,128", factor)
}

// SampleRateFromSPS maps 10, 20, 40, 80 or 320 samples per second to its code.
func SampleRateFromSPS(sps int) (SampleRate, error) {
	switch sps {
	case 10:
		return SPS10, nil
	case 20:
		return SPS20, nil
	case 40:
		return SPS40, nil
	case 80:
		return SPS80, nil
	case 320:
		return SPS320, nil
	default:
		return 0, fmt.Errorf("%d is not a valid sample rate, choose from 10,20,40,80,320", sps)
	}
}

// LDOFromMillivolts maps 2400..4500 mV, in 300 mV steps, to its code.
func LDOFromMillivolts(mv int) (LDO, error) {
	for v := LDO4V5; v <= LDO2V4; v++ {
		if v.Millivolts() == mv {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%d mV is not a valid LDO voltage, choose 2400..4500 in 300 mV steps", mv)
}
