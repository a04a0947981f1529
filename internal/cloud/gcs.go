// Copyright 2025 Viaje Scout Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
)

// GCSObject is a lightweight reference to an archived object, passed
// between workflow commands.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// URI returns the gs:// address of the object.
func (o GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// ArchiveFile copies a local file into the archive bucket under objectName.
// The writer is chunked by the storage client; ctx cancellation aborts the
// upload and leaves no partial object.
func ArchiveFile(ctx context.Context, client *storage.Client, localPath string, obj GCSObject) error {
	in, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	w := client.Bucket(obj.Bucket).Object(obj.Name).NewWriter(ctx)
	w.ContentType = obj.MIMEType
	if _, err := io.Copy(w, in); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
