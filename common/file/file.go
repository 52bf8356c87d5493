package file

import "os"

func WriteFileWithSync(file string, data []byte) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}

	return f.Close()
}

// Exists reports whether path names an existing regular file or device node.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
