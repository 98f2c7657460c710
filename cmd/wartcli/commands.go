package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/AlexZinkM/wartlock/internal/config"
	"github.com/AlexZinkM/wartlock/internal/crypto"
	"github.com/AlexZinkM/wartlock/internal/store"
	"github.com/AlexZinkM/wartlock/warthog"

	"github.com/urfave/cli"
)

var mnemonicCommand = cli.Command{
	Name:  "mnemonic",
	Usage: "Generate a recovery phrase and print the address it controls.",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "strength",
			Value: crypto.DefaultMnemonicStrength,
			Usage: "entropy bits: 128, 160, 192, 224 or 256",
		},
	},
	Action: newMnemonic,
}

func newMnemonic(ctx *cli.Context) error {
	phrase, err := crypto.GenerateMnemonic(ctx.Int("strength"))
	if err != nil {
		return err
	}

	wallet, err := crypto.WalletFromMnemonic(phrase)
	if err != nil {
		return err
	}
	defer wallet.Zero()

	fmt.Fprintln(ctx.App.Writer, phrase)
	fmt.Fprintln(ctx.App.Writer, wallet.Address)
	return nil
}

var addressCommand = cli.Command{
	Name:  "address",
	Usage: "Print the address for a recovery phrase, private key or public key.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "mnemonic",
			Usage: "BIP-39 recovery phrase",
		},
		cli.StringFlag{
			Name:  "key",
			Usage: "64-character hex private key",
		},
		cli.StringFlag{
			Name:  "pubkey",
			Usage: "66-character hex compressed public key",
		},
	},
	Action: printAddress,
}

func printAddress(ctx *cli.Context) error {
	set := 0
	for _, name := range []string{"mnemonic", "key", "pubkey"} {
		if ctx.IsSet(name) {
			set++
		}
	}
	switch {
	case set == 0:
		return errors.New("one of --mnemonic, --key or --pubkey is required")
	case set > 1:
		return errors.New("use only one of --mnemonic, --key or --pubkey")
	}

	if ctx.IsSet("pubkey") {
		addr, err := addressFromPublicKeyHex(ctx.String("pubkey"))
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, addr)
		return nil
	}

	var (
		wallet *crypto.Wallet
		err    error
	)
	if ctx.IsSet("mnemonic") {
		wallet, err = crypto.WalletFromMnemonic(ctx.String("mnemonic"))
	} else {
		wallet, err = crypto.WalletFromPrivateKeyHex(ctx.String("key"))
	}
	if err != nil {
		return err
	}
	defer wallet.Zero()

	fmt.Fprintln(ctx.App.Writer, wallet.Address)
	return nil
}

func addressFromPublicKeyHex(s string) (crypto.Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("%w: %v", crypto.ErrInvalidPublicKey, err)
	}

	pub, err := crypto.PublicKeyFromBytes(raw)
	if err != nil {
		return crypto.Address{}, err
	}
	return crypto.AddressFromPublicKey(pub[:])
}

var rekeyCommand = cli.Command{
	Name:  "rekey",
	Usage: "Re-encrypt a stored wallet under a new password.",
	Description: `
	Prompts for the current and the new password, then stores the key
	encrypted with a fresh salt. The API server must not be running,
	the database allows a single process.`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:   "db",
			Value:  "wartwallet.db",
			EnvVar: "WALLET_DB_PATH",
			Usage:  "wallet database directory",
		},
		cli.StringFlag{
			Name:  "address",
			Usage: "address of the wallet to re-key",
		},
	},
	Action: rekey,
}

func rekey(ctx *cli.Context) error {
	address := ctx.String("address")
	if address == "" {
		return errors.New("--address is required")
	}

	st, err := store.Open(ctx.String("db"))
	if err != nil {
		return err
	}
	defer st.Close()

	oldPassword, err := config.PromptForPassword("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)

	newPassword, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer clear(newPassword)

	svc := warthog.NewService(st, warthog.Config{})
	if err := svc.ChangePassword(address, oldPassword, newPassword); err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "wallet %s re-encrypted\n", address)
	return nil
}

func promptNewPassword() ([]byte, error) {
	password, err := config.PromptForPassword("New password: ")
	if err != nil {
		return nil, err
	}

	confirm, err := config.PromptForPassword("Repeat new password: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(confirm)

	if string(password) != string(confirm) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}
