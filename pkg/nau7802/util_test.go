package nau7802

import (
	"testing"
)

func TestDecodeSample(t *testing.T) {
	t.Run("AllOnes", func(t *testing.T) {
		result := DecodeSample([]byte{0xFF, 0xFF, 0xFF})
		if result != -1 {
			t.Errorf("expected -1, got %d", result)
		}
	})

	t.Run("One", func(t *testing.T) {
		result := DecodeSample([]byte{0x00, 0x00, 0x01})
		if result != 1 {
			t.Errorf("expected 1, got %d", result)
		}
	})

	t.Run("MostNegative", func(t *testing.T) {
		result := DecodeSample([]byte{0x80, 0x00, 0x00})
		if result != -8388608 {
			t.Errorf("expected -8388608, got %d", result)
		}
	})

	t.Run("MostPositive", func(t *testing.T) {
		result := DecodeSample([]byte{0x7F, 0xFF, 0xFF})
		if result != 8388607 {
			t.Errorf("expected 8388607, got %d", result)
		}
	})

	t.Run("ZeroValue", func(t *testing.T) {
		result := DecodeSample([]byte{0x00, 0x00, 0x00})
		if result != 0 {
			t.Errorf("expected 0, got %d", result)
		}
	})
}

func TestEncodeSample(t *testing.T) {
	buf := make([]byte, SampleBytes)

	t.Run("Negative", func(t *testing.T) {
		EncodeSample(-2, buf)
		if buf[0] != 0xFF || buf[1] != 0xFF || buf[2] != 0xFE {
			t.Errorf("expected FF FF FE, got % X", buf)
		}
	})

	t.Run("Saturates", func(t *testing.T) {
		EncodeSample(1<<24, buf)
		if got := DecodeSample(buf); got != MaxSample {
			t.Errorf("expected %d, got %d", MaxSample, got)
		}
		EncodeSample(-1<<24, buf)
		if got := DecodeSample(buf); got != MinSample {
			t.Errorf("expected %d, got %d", MinSample, got)
		}
	})
}

func TestCodeLookups(t *testing.T) {
	t.Run("Gain", func(t *testing.T) {
		g, err := GainFromFactor(64)
		if err != nil || g != Gain64 {
			t.Errorf("expected Gain64, got %d (%v)", g, err)
		}
		if _, err = GainFromFactor(3); err == nil {
			t.Error("expected error")
		}
		if Gain(0xFF).Factor() != 128 {
			t.Error("out of range gain code should saturate to 128")
		}
	})

	t.Run("SampleRate", func(t *testing.T) {
		r, err := SampleRateFromSPS(320)
		if err != nil || r != SPS320 {
			t.Errorf("expected SPS320, got %d (%v)", r, err)
		}
		if _, err = SampleRateFromSPS(160); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("LDO", func(t *testing.T) {
		v, err := LDOFromMillivolts(3300)
		if err != nil || v != LDO3V3 {
			t.Errorf("expected LDO3V3, got %d (%v)", v, err)
		}
		if LDO2V4.Millivolts() != 2400 {
			t.Errorf("expected 2400, got %d", LDO2V4.Millivolts())
		}
		if _, err = LDOFromMillivolts(3100); err == nil {
			t.Error("expected error")
		}
	})
}
