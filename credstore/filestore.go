package credstore

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32
)

// scrypt parameters, interactive profile
const (
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// vaultFile is the on-disk layout: a random salt for key derivation and a
// secretbox-sealed JSON map of key/value pairs.
type vaultFile struct {
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	Sealed []byte `json:"sealed"`
}

// FileStore is a Store backed by a single encrypted file. Values are sealed
// with NaCl secretbox under a key derived from the passphrase via scrypt.
// The file is created with 0600 permissions and rewritten atomically.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase []byte
}

// NewFileStore opens (or lazily creates) an encrypted store at path.
func NewFileStore(path string, passphrase []byte) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("[NewFileStore] path is required")
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("[NewFileStore] passphrase is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("[NewFileStore] create store directory: %w", err)
	}
	return &FileStore{path: path, passphrase: passphrase}, nil
}

// Save writes value under key.
func (fs *FileStore) Save(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return fmt.Errorf("[FileStore.Save] read store: %w", err)
	}
	values[key] = value
	if err := fs.write(values); err != nil {
		return fmt.Errorf("[FileStore.Save] write store: %w", err)
	}
	return nil
}

// Load returns the value stored under key, or ErrNotFound.
func (fs *FileStore) Load(key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return "", fmt.Errorf("[FileStore.Load] read store: %w", err)
	}
	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Delete removes key. Absent keys are ignored.
func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return fmt.Errorf("[FileStore.Delete] read store: %w", err)
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if err := fs.write(values); err != nil {
		return fmt.Errorf("[FileStore.Delete] write store: %w", err)
	}
	return nil
}

// read decrypts the vault into a key/value map. A missing file is an empty
// store. Caller must hold fs.mu.
func (fs *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var vault vaultFile
	if err := json.Unmarshal(data, &vault); err != nil {
		return nil, fmt.Errorf("corrupt vault file: %w", err)
	}
	if len(vault.Salt) != saltLength || len(vault.Nonce) != nonceLength {
		return nil, fmt.Errorf("corrupt vault file: bad header lengths")
	}

	key, err := fs.deriveKey(vault.Salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceLength]byte
	copy(nonce[:], vault.Nonce)
	plaintext, ok := secretbox.Open(nil, vault.Sealed, &nonce, key)
	if !ok {
		return nil, fmt.Errorf("vault decryption failed (wrong passphrase or tampered file)")
	}

	values := map[string]string{}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, fmt.Errorf("corrupt vault payload: %w", err)
	}
	return values, nil
}

// write seals the map with a fresh salt and nonce and replaces the file
// atomically. Caller must hold fs.mu.
func (fs *FileStore) write(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	key, err := fs.deriveKey(salt)
	if err != nil {
		return err
	}
	sealed := secretbox.Seal(nil, plaintext, &nonce, key)

	data, err := json.Marshal(vaultFile{Salt: salt, Nonce: nonce[:], Sealed: sealed})
	if err != nil {
		return err
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (fs *FileStore) deriveKey(salt []byte) (*[keyLength]byte, error) {
	derived, err := scrypt.Key(fs.passphrase, salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var key [keyLength]byte
	copy(key[:], derived)
	return &key, nil
}
