package utils

import "os"

// AppendToFile appends content to file, creating it if needed
func AppendToFile(filename, content string) error {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(content)
	return err
}

// WriteStringToFile writes string content to a file (overwrites if exists)
func WriteStringToFile(filename, content string) error {
	return os.WriteFile(filename, []byte(content), 0644)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// EnsureDir ensures a directory exists, creates it if it doesn't
func EnsureDir(dirPath string) error {
	if !FileExists(dirPath) {
		return os.MkdirAll(dirPath, 0755)
	}
	return nil
}
