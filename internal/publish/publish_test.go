package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	body        string
	contentType string
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]object
	fail    string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.fail {
		return nil, errors.New("access denied")
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = object{body: string(b), contentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"recipe-soup.html":  "<h1>Soup</h1>",
		"index.json":        `["/food/recipes/recipe-soup.html"]`,
		"images/soup.jpg":   "jpg",
		"images/notes.blob": "x",
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	}
	return dir
}

func TestPublish(t *testing.T) {
	dir := writeSite(t)
	fake := &fakeS3{objects: map[string]object{}}

	var uploaded []string
	var mu sync.Mutex
	p := New(fake, "my-bucket", "/food/recipes/", nil)
	p.OnFile = func(key string) {
		mu.Lock()
		uploaded = append(uploaded, key)
		mu.Unlock()
	}

	n, err := p.Publish(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, uploaded, 4)

	soup := fake.objects["food/recipes/recipe-soup.html"]
	assert.Equal(t, "<h1>Soup</h1>", soup.body)
	assert.Contains(t, soup.contentType, "text/html")
	assert.Equal(t, "image/jpeg", fake.objects["food/recipes/images/soup.jpg"].contentType)
	assert.Equal(t, "application/octet-stream", fake.objects["food/recipes/images/notes.blob"].contentType)
}

func TestPublishFailure(t *testing.T) {
	dir := writeSite(t)
	fake := &fakeS3{objects: map[string]object{}, fail: "index.json"}

	_, err := New(fake, "b", "", nil).Publish(context.Background(), dir)
	assert.ErrorContains(t, err, "index.json")
}

func TestFiles(t *testing.T) {
	files, err := Files(writeSite(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"images/notes.blob", "images/soup.jpg", "index.json", "recipe-soup.html"}, files)

	_, err = Files(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
