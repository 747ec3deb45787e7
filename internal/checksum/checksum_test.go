package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256 of the empty string.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestChanged(t *testing.T) {
	data := []byte("0 HEAD\n0 TRLR\n")
	if !Changed("", data) {
		t.Error("empty previous sum should count as changed")
	}
	if Changed(Sum(data), data) {
		t.Error("matching sum should not count as changed")
	}
	if !Changed(Sum([]byte("other")), data) {
		t.Error("different sum should count as changed")
	}
}
