package avi

func Test(data []byte) bool {
	if len(data) < 16 {
		return false
	}

	// AVI Magic Numbers
	// https://www.garykessler.net/library/file_sigs.html
	return string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "AVI " &&
		string(data[12:16]) == "LIST"
}
